package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rehab-client-registry/internal/domain/clients"
	"rehab-client-registry/internal/domain/episodes"
)

func episodeInput(entry string, meds ...episodes.MedicationInput) episodes.EpisodeInput {
	return episodes.EpisodeInput{
		EntryDate:   entry,
		Medications: meds,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterWithEpisode_MergesByCPF(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewClientsRepo(store)

	c := clients.Client{Name: "Ana", CPF: "11122233344", Email: "a@b.com", Phone: "999"}

	id1, created, err := repo.RegisterWithEpisode(ctx, c, episodeInput("2024-01-01",
		episodes.MedicationInput{Name: "Ibuprofen", Dosage: "200mg"}))
	if err != nil {
		t.Fatalf("register #1: %v", err)
	}
	if !created {
		t.Fatal("first register must create the client")
	}

	// mismo CPF, otros datos de contacto: no es error, se cuelga otra ficha
	c2 := clients.Client{Name: "Ana Maria", CPF: "11122233344", Email: "otro@b.com", Phone: "111"}
	id2, created, err := repo.RegisterWithEpisode(ctx, c2, episodeInput("2024-06-01"))
	if err != nil {
		t.Fatalf("register #2: %v", err)
	}
	if created {
		t.Fatal("second register with same CPF must not create a client")
	}
	if id1 != id2 {
		t.Fatalf("expected same client id, got %d vs %d", id1, id2)
	}

	got, err := repo.GetWithEpisodes(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(got.Episodes))
	}
	// más reciente primero
	if got.Episodes[0].EntryDate != "2024-06-01" || got.Episodes[1].EntryDate != "2024-01-01" {
		t.Fatalf("episodes out of order: %q, %q", got.Episodes[0].EntryDate, got.Episodes[1].EntryDate)
	}
	if len(got.Episodes[1].Medications) != 1 || got.Episodes[1].Medications[0].Name != "Ibuprofen" {
		t.Fatalf("expected first episode medication, got %#v", got.Episodes[1].Medications)
	}
}

func TestDeleteClient_CascadesToEpisodesAndMedications(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	crepo := NewClientsRepo(store)
	erepo := NewEpisodesRepo(store)

	id, _, err := crepo.RegisterWithEpisode(ctx,
		clients.Client{Name: "Ana", CPF: "11122233344", Email: "a@b.com", Phone: "9"},
		episodeInput("2024-01-01", episodes.MedicationInput{Name: "A", Dosage: "1"}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, _ := crepo.GetWithEpisodes(ctx, id)
	epID := got.Episodes[0].ID

	if err := crepo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// verificar ausencia, no solo la fila dueña
	if _, err := crepo.GetWithEpisodes(ctx, id); !errors.Is(err, clients.ErrNotFound) {
		t.Fatalf("expected client gone, got %v", err)
	}
	if _, err := erepo.GetByID(ctx, epID); !errors.Is(err, episodes.ErrNotFound) {
		t.Fatalf("expected episode gone, got %v", err)
	}
	if len(store.medications) != 0 {
		t.Fatalf("expected no medication residue, got %d", len(store.medications))
	}
}

func TestUpdateEpisode_ReplacesMedicationList(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	crepo := NewClientsRepo(store)
	erepo := NewEpisodesRepo(store)

	id, _, err := crepo.RegisterWithEpisode(ctx,
		clients.Client{Name: "Ana", CPF: "11122233344", Email: "a@b.com", Phone: "9"},
		episodeInput("2024-01-01",
			episodes.MedicationInput{Name: "A", Dosage: "1"},
			episodes.MedicationInput{Name: "B", Dosage: "2"}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, _ := crepo.GetWithEpisodes(ctx, id)
	epID := got.Episodes[0].ID

	err = erepo.Update(ctx, epID, episodeInput("2024-01-01",
		episodes.MedicationInput{Name: "C", Dosage: "3"}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	ep, err := erepo.GetByID(ctx, epID)
	if err != nil {
		t.Fatalf("get episode: %v", err)
	}
	if len(ep.Medications) != 1 || ep.Medications[0].Name != "C" {
		t.Fatalf("expected only C, got %#v", ep.Medications)
	}
}

func TestDeleteEpisode_ReturnsOwnerAndCascades(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	crepo := NewClientsRepo(store)
	erepo := NewEpisodesRepo(store)

	id, _, _ := crepo.RegisterWithEpisode(ctx,
		clients.Client{Name: "Ana", CPF: "11122233344", Email: "a@b.com", Phone: "9"},
		episodeInput("2024-01-01", episodes.MedicationInput{Name: "A", Dosage: "1"}))

	got, _ := crepo.GetWithEpisodes(ctx, id)
	epID := got.Episodes[0].ID

	owner, err := erepo.Delete(ctx, epID)
	if err != nil {
		t.Fatalf("delete episode: %v", err)
	}
	if owner != id {
		t.Fatalf("expected owner %d, got %d", id, owner)
	}
	if len(store.medications) != 0 {
		t.Fatal("expected medications cascade-deleted")
	}

	if _, err := erepo.Delete(ctx, epID); !errors.Is(err, episodes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestList_FiltersAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewClientsRepo(store)

	discharge := "2024-03-01"

	// Ana: ficha activa
	_, _, _ = repo.RegisterWithEpisode(ctx,
		clients.Client{Name: "Ana", CPF: "11122233344", Email: "ana@b.com", Phone: "9"},
		episodeInput("2024-01-15"))

	// Bruno: ficha finalizada
	_, _, _ = repo.RegisterWithEpisode(ctx,
		clients.Client{Name: "Bruno", CPF: "55566677788", Email: "bruno@b.com", Phone: "8"},
		episodes.EpisodeInput{EntryDate: "2024-02-10", DischargeDate: &discharge, CreatedAt: time.Now()})

	all, err := repo.List(ctx, clients.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(all.Clients))
	}
	if all.Stats.ClientsWithEpisodes != 2 || all.Stats.ActiveEpisodes != 1 || all.Stats.FinishedEpisodes != 1 {
		t.Fatalf("unexpected stats: %+v", all.Stats)
	}

	byText, _ := repo.List(ctx, clients.ListFilter{Query: "ana"})
	if len(byText.Clients) != 1 || byText.Clients[0].Name != "Ana" {
		t.Fatalf("text filter failed: %#v", byText.Clients)
	}

	byCPF, _ := repo.List(ctx, clients.ListFilter{Query: "555666"})
	if len(byCPF.Clients) != 1 || byCPF.Clients[0].Name != "Bruno" {
		t.Fatalf("cpf filter failed: %#v", byCPF.Clients)
	}

	active, _ := repo.List(ctx, clients.ListFilter{Status: clients.StatusActive})
	if len(active.Clients) != 1 || active.Clients[0].Name != "Ana" {
		t.Fatalf("status=active filter failed: %#v", active.Clients)
	}

	finished, _ := repo.List(ctx, clients.ListFilter{Status: clients.StatusFinished})
	if len(finished.Clients) != 1 || finished.Clients[0].Name != "Bruno" {
		t.Fatalf("status=finished filter failed: %#v", finished.Clients)
	}

	// rango lexicográfico sobre fechas ISO
	ranged, _ := repo.List(ctx, clients.ListFilter{EntryFrom: "2024-02-01", EntryTo: "2024-02-28"})
	var withEpisodes int
	for _, c := range ranged.Clients {
		if len(c.Episodes) > 0 {
			withEpisodes++
			if c.Name != "Bruno" {
				t.Fatalf("unexpected client in range: %s", c.Name)
			}
		}
	}
	if withEpisodes != 1 {
		t.Fatalf("expected 1 client with episodes in range, got %d", withEpisodes)
	}
}
