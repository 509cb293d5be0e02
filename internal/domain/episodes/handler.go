package episodes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rehab-client-registry/internal/web"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rn *web.Renderer) {
	r.Get("/clients/{clientID}/episodes/new", newEpisodeFormHandler(rn))
	r.Post("/clients/{clientID}/episodes", createEpisodeHandler(svc))

	r.Route("/episodes/{episodeID}", func(er chi.Router) {
		er.Get("/edit", editEpisodeFormHandler(svc, rn))
		er.Post("/edit", updateEpisodeHandler(svc))
		er.Post("/delete", deleteEpisodeHandler(svc))
	})
}

func newEpisodeFormHandler(rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := idParam(r, "clientID")
		if !ok {
			http.NotFound(w, r)
			return
		}

		rn.Render(w, http.StatusOK, "episode_new.html", struct {
			Flash    *web.Flash
			ClientID int64
		}{web.PopFlash(w, r), clientID})
	}
}

func createEpisodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := idParam(r, "clientID")
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		_, err := svc.Add(r.Context(), clientID, episodeForm(r))
		if err != nil {
			switch {
			case errors.Is(err, ErrClientNotFound):
				web.SetFlash(w, "error", "Cliente não encontrado.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
			case errors.Is(err, ErrInvalidInput):
				web.SetFlash(w, "error", "Data de entrada inválida (AAAA-MM-DD).")
				http.Redirect(w, r, "/clients/"+strconv.FormatInt(clientID, 10)+"/episodes/new", http.StatusSeeOther)
			default:
				web.SetFlash(w, "error", "Não foi possível criar a ficha.")
				http.Redirect(w, r, "/clients/"+strconv.FormatInt(clientID, 10), http.StatusSeeOther)
			}
			return
		}

		web.SetFlash(w, "success", "Ficha criada com sucesso!")
		http.Redirect(w, r, "/clients/"+strconv.FormatInt(clientID, 10), http.StatusSeeOther)
	}
}

type episodeEditView struct {
	Flash           *web.Flash
	Episode         EpisodeWithMedications
	MedicationsJSON string
}

func editEpisodeFormHandler(svc *Service, rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "episodeID")
		if !ok {
			http.NotFound(w, r)
			return
		}

		ep, err := svc.Get(r.Context(), id)
		if err != nil {
			web.SetFlash(w, "error", "Ficha não encontrada.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		rn.Render(w, http.StatusOK, "episode_edit.html", episodeEditView{
			Flash:           web.PopFlash(w, r),
			Episode:         ep,
			MedicationsJSON: medicationsJSON(ep.Medications),
		})
	}
}

func updateEpisodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "episodeID")
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := svc.Update(r.Context(), id, episodeForm(r)); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				web.SetFlash(w, "error", "Ficha não encontrada.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
			case errors.Is(err, ErrInvalidInput):
				web.SetFlash(w, "error", "Data de entrada inválida (AAAA-MM-DD).")
				http.Redirect(w, r, "/episodes/"+strconv.FormatInt(id, 10)+"/edit", http.StatusSeeOther)
			default:
				web.SetFlash(w, "error", "Não foi possível atualizar a ficha.")
				http.Redirect(w, r, "/episodes/"+strconv.FormatInt(id, 10)+"/edit", http.StatusSeeOther)
			}
			return
		}

		ep, err := svc.Get(r.Context(), id)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		web.SetFlash(w, "success", "Ficha atualizada com sucesso!")
		http.Redirect(w, r, "/clients/"+strconv.FormatInt(ep.ClientID, 10), http.StatusSeeOther)
	}
}

// deleteEpisodeHandler borra la ficha y redirige a la vista del cliente
// dueño (el repo devuelve el client_id antes de borrar).
func deleteEpisodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "episodeID")
		if !ok {
			http.NotFound(w, r)
			return
		}

		clientID, err := svc.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				web.SetFlash(w, "error", "Ficha não encontrada.")
			} else {
				web.SetFlash(w, "error", "Não foi possível remover a ficha.")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		web.SetFlash(w, "success", "Ficha removida com sucesso!")
		http.Redirect(w, r, "/clients/"+strconv.FormatInt(clientID, 10), http.StatusSeeOther)
	}
}

func episodeForm(r *http.Request) EpisodeInput {
	var discharge *string
	if v := r.PostFormValue("discharge_date"); v != "" {
		discharge = &v
	}
	return EpisodeInput{
		EntryDate:     r.PostFormValue("entry_date"),
		DischargeDate: discharge,
		Notes:         r.PostFormValue("notes"),
		Medications:   DecodeMedicationList(r.PostFormValue("medications_json")),
	}
}

func medicationsJSON(meds []Medication) string {
	in := make([]MedicationInput, 0, len(meds))
	for _, m := range meds {
		in = append(in, MedicationInput{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Notes:     m.Notes,
		})
	}
	b, err := json.Marshal(in)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
