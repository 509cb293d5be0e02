package episodes

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	clientExists bool

	createdClientID int64
	lastInput       EpisodeInput
	updatedID       int64
	deletedID       int64
}

func (r *fakeRepo) Create(ctx context.Context, clientID int64, in EpisodeInput) (Episode, error) {
	r.createdClientID = clientID
	r.lastInput = in
	return Episode{ID: 10, ClientID: clientID, EntryDate: in.EntryDate, CreatedAt: in.CreatedAt}, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, in EpisodeInput) error {
	r.updatedID = id
	r.lastInput = in
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) (int64, error) {
	r.deletedID = id
	return 3, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (EpisodeWithMedications, error) {
	return EpisodeWithMedications{}, ErrNotFound
}

func (r *fakeRepo) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	return r.clientExists, nil
}

func TestService_Add_RequiresExistingClient(t *testing.T) {
	repo := &fakeRepo{clientExists: false}
	svc := NewService(repo)

	_, err := svc.Add(context.Background(), 99, EpisodeInput{EntryDate: "2024-06-01"})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if repo.createdClientID != 0 {
		t.Fatal("repo.Create must not run for a missing client")
	}
}

func TestService_Add_FiltersMedicationsAndStampsCreation(t *testing.T) {
	repo := &fakeRepo{clientExists: true}
	svc := NewService(repo)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ep, err := svc.Add(context.Background(), 3, EpisodeInput{
		EntryDate: "2024-06-01",
		Medications: []MedicationInput{
			{Name: "Ibuprofen", Dosage: "200mg"},
			{Name: "Incompleto", Dosage: ""},
		},
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ep.ClientID != 3 {
		t.Fatalf("expected episode owned by client 3, got %d", ep.ClientID)
	}
	if len(repo.lastInput.Medications) != 1 {
		t.Fatalf("expected incomplete medication dropped, got %#v", repo.lastInput.Medications)
	}
	if !repo.lastInput.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt = injected now, got %v", repo.lastInput.CreatedAt)
	}
}

func TestService_Add_RejectsBadEntryDate(t *testing.T) {
	repo := &fakeRepo{clientExists: true}
	svc := NewService(repo)

	_, err := svc.Add(context.Background(), 3, EpisodeInput{EntryDate: "junio 1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Update_NormalizesBeforeRepo(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	err := svc.Update(context.Background(), 10, EpisodeInput{
		EntryDate: "2024-06-01",
		Medications: []MedicationInput{
			{Name: "C", Dosage: "5mg"},
			{Name: "", Dosage: "x"},
		},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if repo.updatedID != 10 {
		t.Fatalf("expected update on id 10, got %d", repo.updatedID)
	}
	if len(repo.lastInput.Medications) != 1 || repo.lastInput.Medications[0].Name != "C" {
		t.Fatalf("expected filtered list, got %#v", repo.lastInput.Medications)
	}
}

func TestService_Delete_ReturnsOwner(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	clientID, err := svc.Delete(context.Background(), 10)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if clientID != 3 || repo.deletedID != 10 {
		t.Fatalf("expected owner 3 for episode 10, got %d (deleted %d)", clientID, repo.deletedID)
	}
}
