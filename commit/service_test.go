package commit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"expoplan/eventhub"
	"expoplan/schedule"
)

// fakeClient assigns sequential ids and records which operations ran.
type fakeClient struct {
	mu     sync.Mutex
	nextID int64
	calls  []string

	boothErr        error
	sessionErr      error
	boothItemErrors []string

	createdBooths    []eventhub.Booth
	createdSessions  []eventhub.Session
	capacityLinks    []eventhub.CapacityLink
	attendees        []eventhub.Attendee
	vendorIDs        []int64
	registrations    []eventhub.Registration
	event            eventhub.Event
	updatedStart     time.Time
	updatedEnd       time.Time
	dateRangeUpdated bool
	viewsRefreshed   bool

	started  chan struct{}
	release  chan struct{}
	blockOne bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{event: eventhub.Event{ID: 1, Name: "Spring Expo"}}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) id() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeClient) CreateBooths(_ context.Context, booths []eventhub.Booth) ([]eventhub.Booth, []string, error) {
	f.record("CreateBooths")
	if f.blockOne {
		f.blockOne = false
		close(f.started)
		<-f.release
	}
	if f.boothErr != nil {
		return nil, f.boothItemErrors, f.boothErr
	}
	created := make([]eventhub.Booth, 0, len(booths))
	for _, booth := range booths {
		booth.ID = f.id()
		created = append(created, booth)
	}
	f.createdBooths = created
	return created, nil, nil
}

func (f *fakeClient) CreateSessions(_ context.Context, sessions []eventhub.Session) ([]eventhub.Session, []string, error) {
	f.record("CreateSessions")
	if f.sessionErr != nil {
		return nil, nil, f.sessionErr
	}
	created := make([]eventhub.Session, 0, len(sessions))
	for _, session := range sessions {
		session.ID = f.id()
		created = append(created, session)
	}
	f.createdSessions = created
	return created, nil, nil
}

func (f *fakeClient) CreateCapacityLinks(_ context.Context, links []eventhub.CapacityLink) ([]eventhub.CapacityLink, []string, error) {
	f.record("CreateCapacityLinks")
	f.capacityLinks = links
	return links, nil, nil
}

func (f *fakeClient) FindOrCreateAttendees(_ context.Context, attendees []eventhub.Attendee) ([]eventhub.Attendee, []string, error) {
	f.record("FindOrCreateAttendees")
	created := make([]eventhub.Attendee, 0, len(attendees))
	for _, attendee := range attendees {
		attendee.ID = f.id()
		created = append(created, attendee)
	}
	f.attendees = created
	return created, nil, nil
}

func (f *fakeClient) MarkAttendeesAsVendor(_ context.Context, attendeeIDs []int64) ([]int64, []string, error) {
	f.record("MarkAttendeesAsVendor")
	f.vendorIDs = attendeeIDs
	return attendeeIDs, nil, nil
}

func (f *fakeClient) CreateRegistrations(_ context.Context, registrations []eventhub.Registration) ([]eventhub.Registration, []string, error) {
	f.record("CreateRegistrations")
	created := make([]eventhub.Registration, 0, len(registrations))
	for _, registration := range registrations {
		registration.ID = f.id()
		created = append(created, registration)
	}
	f.registrations = created
	return created, nil, nil
}

func (f *fakeClient) GetEvent(_ context.Context) (eventhub.Event, error) {
	f.record("GetEvent")
	return f.event, nil
}

func (f *fakeClient) UpdateEventDateRange(_ context.Context, start, end time.Time) error {
	f.record("UpdateEventDateRange")
	f.updatedStart, f.updatedEnd, f.dateRangeUpdated = start, end, true
	return nil
}

func (f *fakeClient) RefreshCachedViews(_ context.Context) error {
	f.record("RefreshCachedViews")
	f.viewsRefreshed = true
	return nil
}

func testSnapshot() schedule.Snapshot {
	start := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.Local)
	return schedule.Snapshot{
		RunID: "run-1",
		Sessions: []schedule.Session{
			{Name: "Kickoff 9:30", Start: start, End: start.Add(30 * time.Minute)},
		},
		Booths: []schedule.Booth{
			{PhysicalID: "A-1", CompanyName: "Acme"},
		},
		Registrations: []schedule.Registration{
			{SessionName: "Kickoff 9:30", FirstName: "Pat", LastName: "Doe", Organization: "Acme", BoothPhysicalID: "A-1", Vendor: true},
			{SessionName: "Kickoff 9:30", FirstName: "Sam", LastName: "Roe", Organization: "Globex", BoothPhysicalID: "A-1"},
		},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	client := newFakeClient()
	service := NewService(client)

	summary, err := service.Run(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Aborted {
		t.Fatalf("unexpected abort: %s", summary.AbortReason)
	}

	if summary.Booths.Success != 1 || summary.Sessions.Success != 1 {
		t.Fatalf("unexpected booth/session counters: %+v", summary)
	}

	// One session × one booth: exactly one capacity link, counting only the
	// non-vendor registration.
	if len(client.capacityLinks) != 1 {
		t.Fatalf("expected 1 capacity link, got %d", len(client.capacityLinks))
	}
	if client.capacityLinks[0].Capacity != 1 {
		t.Fatalf("expected vendor excluded from capacity, got %d", client.capacityLinks[0].Capacity)
	}

	if summary.Attendees.Success != 2 {
		t.Fatalf("expected 2 attendees created, got %d", summary.Attendees.Success)
	}
	if len(client.vendorIDs) != 1 {
		t.Fatalf("expected 1 vendor attendee marked, got %v", client.vendorIDs)
	}

	if summary.Registrations.Success != 2 || summary.Registrations.Skipped != 0 {
		t.Fatalf("unexpected registration counters: %+v", summary.Registrations)
	}
	for _, registration := range client.registrations {
		if registration.BoothID == nil {
			t.Fatalf("expected booth id resolved on %+v", registration)
		}
	}

	if !client.dateRangeUpdated {
		t.Fatalf("expected event date range update")
	}
	if !client.viewsRefreshed {
		t.Fatalf("expected cached views refresh")
	}
	if summary.RunID != "run-1" {
		t.Fatalf("unexpected run id: %q", summary.RunID)
	}
}

func TestRun_BoothFailureAbortsRemainingPhases(t *testing.T) {
	client := newFakeClient()
	client.boothErr = errors.New("eventhub unavailable")
	client.boothItemErrors = []string{"booth A-1: rejected"}
	service := NewService(client)

	summary, err := service.Run(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Aborted {
		t.Fatalf("expected abort")
	}
	if summary.Booths.Failed != 1 {
		t.Fatalf("expected failed booth recorded, got %+v", summary.Booths)
	}
	if len(summary.Booths.Errors) != 2 {
		t.Fatalf("expected item error and transport error, got %v", summary.Booths.Errors)
	}

	for _, call := range client.calls {
		if call != "CreateBooths" {
			t.Fatalf("expected no calls past booths, saw %v", client.calls)
		}
	}
	if summary.Sessions.Success != 0 || summary.Registrations.Success != 0 {
		t.Fatalf("summary must only reflect phase 1: %+v", summary)
	}
}

func TestRun_SessionFailureKeepsBooths(t *testing.T) {
	client := newFakeClient()
	client.sessionErr = errors.New("eventhub unavailable")
	service := NewService(client)

	summary, err := service.Run(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Aborted {
		t.Fatalf("expected abort")
	}
	// No rollback: booths stay persisted.
	if summary.Booths.Success != 1 {
		t.Fatalf("expected booth success preserved, got %+v", summary.Booths)
	}
	for _, call := range client.calls {
		if call == "CreateCapacityLinks" || call == "CreateRegistrations" {
			t.Fatalf("expected no calls past sessions, saw %v", client.calls)
		}
	}
}

func TestRun_UnresolvableRegistrationSkipped(t *testing.T) {
	client := newFakeClient()
	service := NewService(client)

	snap := testSnapshot()
	snap.Registrations = append(snap.Registrations, schedule.Registration{
		SessionName:  "Ghost session",
		FirstName:    "Kim",
		LastName:     "Lee",
		Organization: "Initech",
	})

	summary, err := service.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Registrations.Skipped != 1 {
		t.Fatalf("expected 1 skip, got %+v", summary.Registrations)
	}
	if summary.Registrations.Success != 2 {
		t.Fatalf("expected resolvable registrations created, got %+v", summary.Registrations)
	}
	found := false
	for _, message := range summary.Registrations.Errors {
		if strings.Contains(message, "Ghost session") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected skip reason naming the session, got %v", summary.Registrations.Errors)
	}
}

func TestRun_EventRangeUnchangedSkipsUpdate(t *testing.T) {
	client := newFakeClient()
	snap := testSnapshot()
	client.event.StartsAt = snap.Sessions[0].Start
	client.event.EndsAt = snap.Sessions[0].End
	service := NewService(client)

	summary, err := service.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.dateRangeUpdated {
		t.Fatalf("expected no date range update")
	}
	if summary.Event.Skipped != 1 {
		t.Fatalf("expected event phase skip, got %+v", summary.Event)
	}
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	client := newFakeClient()
	client.blockOne = true
	client.started = make(chan struct{})
	client.release = make(chan struct{})
	service := NewService(client)

	done := make(chan error, 1)
	go func() {
		_, err := service.Run(context.Background(), testSnapshot())
		done <- err
	}()

	<-client.started
	if _, err := service.Run(context.Background(), testSnapshot()); !errors.Is(err, ErrCommitInProgress) {
		t.Fatalf("expected ErrCommitInProgress, got %v", err)
	}
	close(client.release)

	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestRun_VendorFailsafeOverridesParser(t *testing.T) {
	client := newFakeClient()
	service := NewService(client)

	snap := testSnapshot()
	// Parser missed the vendor flag; the booth's company still matches.
	snap.Registrations = []schedule.Registration{
		{SessionName: "Kickoff 9:30", FirstName: "Pat", LastName: "Doe", Organization: "acme", BoothPhysicalID: "A-1"},
	}

	_, err := service.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.vendorIDs) != 1 {
		t.Fatalf("expected failsafe to mark the attendee as vendor, got %v", client.vendorIDs)
	}
	if client.capacityLinks[0].Capacity != 0 {
		t.Fatalf("expected failsafe vendor excluded from capacity, got %d", client.capacityLinks[0].Capacity)
	}
}
