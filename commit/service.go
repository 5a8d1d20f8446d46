package commit

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"expoplan/eventhub"
	"expoplan/internal/capacity"
	"expoplan/internal/identity"
	"expoplan/reconcile"
	"expoplan/schedule"
)

// ErrCommitInProgress is returned when Run is entered while another run is
// still active. The pipeline is single-caller and non-reentrant.
var ErrCommitInProgress = errors.New("another commit is already in progress")

// Service applies one staged snapshot to EventHub in six strictly
// sequential phases. Phases never roll back: whatever an earlier phase
// persisted stays persisted when a later phase fails.
type Service struct {
	client eventhub.Client
	busy   atomic.Bool

	// Logf receives per-phase progress lines; nil discards them.
	Logf func(format string, args ...any)
}

func NewService(client eventhub.Client) *Service {
	return &Service{client: client}
}

func (s *Service) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Run validates the snapshot, then executes the phases in order:
// booths, sessions, capacity links, attendees, registrations, event date
// range. A booth or session batch that errors with nothing created aborts
// the remaining phases; every other failure is recorded and the run
// continues. The summary is produced in all cases except a validation
// rejection or a concurrent-run rejection.
func (s *Service) Run(ctx context.Context, snap schedule.Snapshot) (*Summary, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrCommitInProgress
	}
	defer s.busy.Store(false)

	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	summary := &Summary{RunID: snap.RunID}

	createdBooths := s.createBooths(ctx, snap, summary)
	if summary.Aborted {
		return summary, nil
	}

	createdSessions := s.createSessions(ctx, snap, summary)
	if summary.Aborted {
		return summary, nil
	}

	boothCompanies := make(map[string]string, len(createdBooths))
	for _, booth := range createdBooths {
		boothCompanies[fold(booth.PhysicalID)] = booth.CompanyName
	}
	vendorKeys := identity.VendorKeys(snap.Registrations, boothCompanies)

	s.createCapacityLinks(ctx, snap, summary, createdSessions, createdBooths, vendorKeys)
	attendeeIDs := s.applyAttendees(ctx, snap, summary, vendorKeys)
	s.createRegistrations(ctx, snap, summary, createdSessions, createdBooths, attendeeIDs)
	s.reconcileEventDates(ctx, snap, summary)

	if err := s.client.RefreshCachedViews(ctx); err != nil {
		summary.Event.errorf("refresh cached views: %v", err)
	}

	return summary, nil
}

func (s *Service) createBooths(ctx context.Context, snap schedule.Snapshot, summary *Summary) []eventhub.Booth {
	s.logf("phase 1/6: creating %d booths", len(snap.Booths))

	batch := make([]eventhub.Booth, 0, len(snap.Booths))
	for _, booth := range snap.Booths {
		batch = append(batch, eventhub.Booth{PhysicalID: booth.PhysicalID, CompanyName: booth.CompanyName})
	}

	created, itemErrors, err := s.client.CreateBooths(ctx, batch)
	recordBatch(&summary.Booths, len(batch), len(created), itemErrors, err)

	if len(created) == 0 && (err != nil || len(itemErrors) > 0) {
		summary.Aborted = true
		summary.AbortReason = "booth creation failed entirely; skipping remaining phases"
	}
	return created
}

func (s *Service) createSessions(ctx context.Context, snap schedule.Snapshot, summary *Summary) []eventhub.Session {
	s.logf("phase 2/6: creating %d sessions", len(snap.Sessions))

	batch := make([]eventhub.Session, 0, len(snap.Sessions))
	for _, session := range snap.Sessions {
		batch = append(batch, eventhub.Session{Name: session.Name, StartsAt: session.Start, EndsAt: session.End})
	}

	created, itemErrors, err := s.client.CreateSessions(ctx, batch)
	recordBatch(&summary.Sessions, len(batch), len(created), itemErrors, err)

	if len(created) == 0 && (err != nil || len(itemErrors) > 0) {
		summary.Aborted = true
		summary.AbortReason = "session creation failed entirely; skipping remaining phases"
	}
	return created
}

func (s *Service) createCapacityLinks(
	ctx context.Context,
	snap schedule.Snapshot,
	summary *Summary,
	sessions []eventhub.Session,
	booths []eventhub.Booth,
	vendorKeys map[string]struct{},
) {
	links := capacity.BuildLinks(sessions, booths, snap.Registrations, vendorKeys)
	s.logf("phase 3/6: creating %d capacity links", len(links))

	created, itemErrors, err := s.client.CreateCapacityLinks(ctx, links)
	recordBatch(&summary.Capacities, len(links), len(created), itemErrors, err)
}

func (s *Service) applyAttendees(
	ctx context.Context,
	snap schedule.Snapshot,
	summary *Summary,
	vendorKeys map[string]struct{},
) map[string]int64 {
	identities := identity.Collapse(snap.Registrations)
	s.logf("phase 4/6: creating %d attendees", len(identities))

	batch := make([]eventhub.Attendee, 0, len(identities))
	for _, id := range identities {
		batch = append(batch, eventhub.Attendee{
			FirstName:    id.FirstName,
			LastName:     id.LastName,
			Organization: id.Organization,
		})
	}

	created, itemErrors, err := s.client.FindOrCreateAttendees(ctx, batch)
	recordBatch(&summary.Attendees, len(batch), len(created), itemErrors, err)

	attendeeIDs := make(map[string]int64, len(created))
	for _, attendee := range created {
		attendeeIDs[attendeeKey(attendee)] = attendee.ID
	}

	vendorIDs := make([]int64, 0, len(vendorKeys))
	for _, id := range identities {
		if _, vendor := vendorKeys[id.Key]; !vendor {
			continue
		}
		if attendeeID, ok := attendeeIDs[id.Key]; ok {
			vendorIDs = append(vendorIDs, attendeeID)
		}
	}
	if len(vendorIDs) > 0 {
		_, markErrors, markErr := s.client.MarkAttendeesAsVendor(ctx, vendorIDs)
		summary.Attendees.Errors = append(summary.Attendees.Errors, markErrors...)
		if markErr != nil {
			summary.Attendees.errorf("mark vendor attendees: %v", markErr)
		}
	}

	return attendeeIDs
}

func (s *Service) createRegistrations(
	ctx context.Context,
	snap schedule.Snapshot,
	summary *Summary,
	sessions []eventhub.Session,
	booths []eventhub.Booth,
	attendeeIDs map[string]int64,
) {
	sessionIDs := make(map[string]int64, len(sessions))
	for _, session := range sessions {
		sessionIDs[fold(session.Name)] = session.ID
	}
	boothIDs := make(map[string]int64, len(booths))
	for _, booth := range booths {
		boothIDs[fold(booth.PhysicalID)] = booth.ID
	}

	batch := make([]eventhub.Registration, 0, len(snap.Registrations))
	for _, reg := range snap.Registrations {
		sessionID, ok := sessionIDs[fold(reg.SessionName)]
		if !ok {
			summary.Registrations.Skipped++
			summary.Registrations.errorf(
				"skipped %s: session %q was not created", reg.FullName(), reg.SessionName)
			continue
		}
		attendeeID, ok := attendeeIDs[reg.IdentityKey()]
		if !ok {
			summary.Registrations.Skipped++
			summary.Registrations.errorf(
				"skipped %s: attendee was not created", reg.FullName())
			continue
		}

		registration := eventhub.Registration{SessionID: sessionID, AttendeeID: attendeeID}
		if boothID, ok := boothIDs[fold(reg.BoothPhysicalID)]; ok {
			registration.BoothID = &boothID
		}
		batch = append(batch, registration)
	}

	s.logf("phase 5/6: creating %d registrations (%d skipped)", len(batch), summary.Registrations.Skipped)

	created, itemErrors, err := s.client.CreateRegistrations(ctx, batch)
	recordBatch(&summary.Registrations, len(batch), len(created), itemErrors, err)
}

func (s *Service) reconcileEventDates(ctx context.Context, snap schedule.Snapshot, summary *Summary) {
	s.logf("phase 6/6: reconciling event date range")

	start, end, ok := reconcile.DateRange(snap.Sessions)
	if !ok {
		summary.Event.Skipped++
		return
	}

	event, err := s.client.GetEvent(ctx)
	if err != nil {
		summary.Event.Failed++
		summary.Event.errorf("load event: %v", err)
		return
	}

	if !reconcile.NeedsUpdate(event.StartsAt, event.EndsAt, start, end) {
		summary.Event.Skipped++
		return
	}

	if err := s.client.UpdateEventDateRange(ctx, start, end); err != nil {
		summary.Event.Failed++
		summary.Event.errorf("update event date range: %v", err)
		return
	}
	summary.Event.Success++
}

func recordBatch(class *ClassSummary, batchSize, createdCount int, itemErrors []string, err error) {
	class.Success += createdCount
	if failed := batchSize - createdCount; failed > 0 {
		class.Failed += failed
	}
	class.Errors = append(class.Errors, itemErrors...)
	if err != nil {
		class.Errors = append(class.Errors, err.Error())
	}
}

func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func attendeeKey(attendee eventhub.Attendee) string {
	return strings.Join([]string{
		fold(attendee.FirstName),
		fold(attendee.LastName),
		fold(attendee.Organization),
	}, "|")
}
