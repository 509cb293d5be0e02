package clients

import (
	"errors"
	"net/http"
	"strconv"

	"rehab-client-registry/internal/domain/episodes"
	"rehab-client-registry/internal/web"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, rn *web.Renderer) {
	r.Get("/", indexHandler(svc, rn))

	r.Route("/clients", func(cr chi.Router) {
		cr.Get("/new", newClientFormHandler(rn))
		cr.Post("/", createClientHandler(svc))
		cr.Get("/{clientID}", getClientHandler(svc, rn))
		cr.Get("/{clientID}/edit", editClientFormHandler(svc, rn))
		cr.Post("/{clientID}/edit", updateClientHandler(svc))
		cr.Post("/{clientID}/delete", deleteClientHandler(svc))
	})
}

type indexView struct {
	Flash   *web.Flash
	Clients []ClientWithEpisodes
	Stats   Stats

	Query     string
	Status    string
	EntryFrom string
	EntryTo   string
}

func indexHandler(svc *Service, rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := ListFilter{
			Query:     q.Get("q"),
			Status:    q.Get("status"),
			EntryFrom: q.Get("entry_from"),
			EntryTo:   q.Get("entry_to"),
		}

		res, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rn.Render(w, http.StatusOK, "index.html", indexView{
			Flash:     web.PopFlash(w, r),
			Clients:   res.Clients,
			Stats:     res.Stats,
			Query:     f.Query,
			Status:    f.Status,
			EntryFrom: f.EntryFrom,
			EntryTo:   f.EntryTo,
		})
	}
}

func newClientFormHandler(rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rn.Render(w, http.StatusOK, "client_new.html", struct {
			Flash *web.Flash
		}{web.PopFlash(w, r)})
	}
}

// createClientHandler procesa el alta completa: cliente + ficha inicial.
// Redirect-after-post siempre; los errores de validación vuelven al form.
func createClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		in := RegisterInput{
			Name:  r.PostFormValue("name"),
			CPF:   r.PostFormValue("cpf"),
			Email: r.PostFormValue("email"),
			Phone: r.PostFormValue("phone"),
			Episode: episodes.EpisodeInput{
				EntryDate:     r.PostFormValue("entry_date"),
				DischargeDate: optionalField(r, "discharge_date"),
				Notes:         r.PostFormValue("notes"),
				Medications:   episodes.DecodeMedicationList(r.PostFormValue("medications_json")),
			},
		}

		clientID, created, err := svc.Register(r.Context(), in)
		if err != nil {
			web.SetFlash(w, "error", registerErrorMessage(err))
			http.Redirect(w, r, "/clients/new", http.StatusSeeOther)
			return
		}

		if created {
			web.SetFlash(w, "success", "Cliente cadastrado com sucesso!")
		} else {
			web.SetFlash(w, "success", "CPF já cadastrado: nova ficha adicionada ao cliente existente.")
		}
		http.Redirect(w, r, "/clients/"+strconv.FormatInt(clientID, 10), http.StatusSeeOther)
	}
}

type clientView struct {
	Flash  *web.Flash
	Client ClientWithEpisodes
}

func getClientHandler(svc *Service, rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientIDParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		c, err := svc.GetWithEpisodes(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				web.SetFlash(w, "error", "Cliente não encontrado.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rn.Render(w, http.StatusOK, "client_detail.html", clientView{
			Flash:  web.PopFlash(w, r),
			Client: c,
		})
	}
}

func editClientFormHandler(svc *Service, rn *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientIDParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		c, err := svc.GetWithEpisodes(r.Context(), id)
		if err != nil {
			web.SetFlash(w, "error", "Cliente não encontrado.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		rn.Render(w, http.StatusOK, "client_edit.html", clientView{
			Flash:  web.PopFlash(w, r),
			Client: c,
		})
	}
}

func updateClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientIDParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		err := svc.Update(r.Context(), id, UpdateInput{
			Name:  r.PostFormValue("name"),
			Email: r.PostFormValue("email"),
			Phone: r.PostFormValue("phone"),
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidEmail):
				web.SetFlash(w, "error", "Email inválido!")
			case errors.Is(err, ErrInvalidInput):
				web.SetFlash(w, "error", "Preencha todos os campos obrigatórios.")
			case errors.Is(err, ErrNotFound):
				web.SetFlash(w, "error", "Cliente não encontrado.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			default:
				web.SetFlash(w, "error", "Não foi possível atualizar o cliente.")
			}
			http.Redirect(w, r, "/clients/"+strconv.FormatInt(id, 10)+"/edit", http.StatusSeeOther)
			return
		}

		web.SetFlash(w, "success", "Cliente atualizado com sucesso!")
		http.Redirect(w, r, "/clients/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
	}
}

func deleteClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientIDParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				web.SetFlash(w, "error", "Cliente não encontrado.")
			} else {
				web.SetFlash(w, "error", "Não foi possível remover o cliente.")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		web.SetFlash(w, "success", "Cliente removido com sucesso!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCPF):
		return "CPF inválido! Deve conter 11 dígitos."
	case errors.Is(err, ErrInvalidEmail):
		return "Email inválido!"
	case errors.Is(err, ErrInvalidInput):
		return "Preencha todos os campos obrigatórios (datas em AAAA-MM-DD)."
	default:
		return "Não foi possível cadastrar o cliente."
	}
}

func clientIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalField: campo vacío => nil (alta pendiente).
func optionalField(r *http.Request, name string) *string {
	v := r.PostFormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
