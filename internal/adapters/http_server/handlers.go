package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"unihaven/internal/app"
	"unihaven/internal/domain"
)

type Handlers struct {
	Accommodations *app.AccommodationService
	Search         *app.SearchService
	Reservations   *app.ReservationService
	Ratings        *app.RatingService
	Audit          *app.AuditService
	Directory      *app.DirectoryService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(api chi.Router) {
		api.Route("/accommodations", func(r chi.Router) {
			r.Get("/", h.listAccommodations)
			r.Post("/", h.createAccommodation)
			r.Get("/search", h.search)
			r.Get("/{id}", h.getAccommodation)
			r.Put("/{id}", h.updateAccommodation)
			r.Delete("/{id}", h.deleteAccommodation)
			r.Post("/{id}/reserve", h.reserve)
			r.Post("/{id}/mark_unavailable", h.markUnavailable)
			r.Post("/{id}/reconcile", h.reconcile)
		})
		api.Route("/reservations", func(r chi.Router) {
			r.Post("/", h.createReservation)
			r.Get("/{id}", h.getReservation)
			r.Post("/{id}/cancel", h.cancelReservation)
			r.Post("/{id}/update-status", h.updateReservationStatus)
		})
		api.Route("/ratings", func(r chi.Router) {
			r.Get("/", h.listRatings)
			r.Post("/", h.createRating)
			r.Get("/pending", h.pendingRatings)
			r.Get("/{id}", h.getRating)
			r.Post("/{id}/moderate", h.moderateRating)
		})
		api.Get("/action-logs", h.actionLogs)
		h.mountDirectory(api)
	})
}

// ---- accommodations ----

func (h *Handlers) listAccommodations(w http.ResponseWriter, r *http.Request) {
	pg, err := pageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Accommodations.List(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createAccommodation(w http.ResponseWriter, r *http.Request) {
	var req accommodationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Accommodations.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/accommodations/%d", a.ID))
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) getAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.Accommodations.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) updateAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req accommodationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Accommodations.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// optionalSpecialist reads {"specialist_id": n} from a body that may be empty.
func optionalSpecialist(r *http.Request) (*int64, error) {
	if r.Body == nil {
		return nil, nil
	}
	var req specialistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, domain.Invalid("malformed JSON body: %v", err)
	}
	return req.SpecialistID, nil
}

func (h *Handlers) deleteAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := optionalSpecialist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := h.Accommodations.Delete(r.Context(), id, sp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusMessage{Status: fmt.Sprintf("Accommodation '%s' successfully deleted", name)})
}

func (h *Handlers) markUnavailable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := optionalSpecialist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Accommodations.MarkUnavailable(r.Context(), id, sp); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusMessage{Status: "Accommodation marked as unavailable"})
}

func (h *Handlers) reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := optionalSpecialist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Accommodations.Reconcile(r.Context(), id, sp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q, err := searchQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Search.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func searchQuery(r *http.Request) (domain.SearchQuery, error) {
	var q domain.SearchQuery
	var err error
	if q.MemberID, err = queryInt64(r, "member_id"); err != nil {
		return q, err
	}
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		if q.Type, err = domain.ParseAccommodationType(t); err != nil {
			return q, err
		}
	}
	if q.AvailableFrom, err = queryDay(r, "available_from"); err != nil {
		return q, err
	}
	if q.AvailableTo, err = queryDay(r, "available_to"); err != nil {
		return q, err
	}
	if q.NumBeds, err = queryInt(r, "num_beds"); err != nil {
		return q, err
	}
	if q.NumBedrooms, err = queryInt(r, "num_bedrooms"); err != nil {
		return q, err
	}
	if q.MinPrice, err = queryFloat(r, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
		return q, err
	}
	if q.CampusID, err = queryInt64(r, "campus_id"); err != nil {
		return q, err
	}
	q.SortBy, err = domain.ParseSortMode(r.URL.Query().Get("sort_by"))
	return q, err
}

// ---- reservations ----

func (h *Handlers) reserve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reserveRequest
	if derr := decode(r, &req); derr != nil {
		// An unavailable listing is a conflict even for an unreadable body.
		if err := h.Reservations.CheckBookable(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeError(w, r, derr)
		return
	}
	h.writeReservation(w, r, id, req)
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.AccommodationID <= 0 {
		writeError(w, r, domain.Invalid("accommodation_id is required"))
		return
	}
	h.writeReservation(w, r, req.AccommodationID, req)
}

func (h *Handlers) writeReservation(w http.ResponseWriter, r *http.Request, accommodationID int64, req reserveRequest) {
	res, err := h.Reservations.Reserve(r.Context(), accommodationID, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/reservations/%d", res.ID))
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Reservations.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusMessage{Status: "Reservation cancelled successfully"})
}

func (h *Handlers) updateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Reservations.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) memberReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reservations.ListByMember(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- ratings ----

func (h *Handlers) listRatings(w http.ResponseWriter, r *http.Request) {
	acc, err := queryInt64(r, "accommodation")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if acc == nil {
		if acc, err = queryInt64(r, "accommodation_id"); err != nil {
			writeError(w, r, err)
			return
		}
	}
	out, err := h.Ratings.List(r.Context(), acc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.Ratings.Create(r.Context(), app.RateInput{
		ReservationID: req.ReservationID,
		MemberID:      req.MemberID,
		Score:         *req.Score,
		Comment:       req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *Handlers) getRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.Ratings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *Handlers) moderateRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moderateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.Ratings.Moderate(r.Context(), id, app.ModerateInput{
		SpecialistID: req.SpecialistID,
		IsApproved:   req.IsApproved,
		Note:         req.ModerationNote,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	verdict := "approved"
	if !rt.IsApproved {
		verdict = "rejected"
	}
	writeJSON(w, http.StatusOK, moderateResponse{Status: "Rating " + verdict, Rating: rt})
}

func (h *Handlers) pendingRatings(w http.ResponseWriter, r *http.Request) {
	pg, err := pageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Ratings.Pending(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- audit ----

func (h *Handlers) actionLogs(w http.ResponseWriter, r *http.Request) {
	q, err := auditQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Audit.Query(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func auditQuery(r *http.Request) (domain.AuditQuery, error) {
	var q domain.AuditQuery
	var err error
	if v := r.URL.Query().Get("action_type"); v != "" {
		if q.ActionType, err = domain.ParseActionType(v); err != nil {
			return q, err
		}
	}
	if v := r.URL.Query().Get("user_type"); v != "" {
		if q.ActorType, err = domain.ParseActorType(v); err != nil {
			return q, err
		}
	}
	if q.ActorID, err = queryInt64(r, "user_id"); err != nil {
		return q, err
	}
	if q.AccommodationID, err = queryInt64(r, "accommodation_id"); err != nil {
		return q, err
	}
	if q.Start, err = queryTime(r, "start_date", false); err != nil {
		return q, err
	}
	if q.End, err = queryTime(r, "end_date", true); err != nil {
		return q, err
	}
	q.Page, err = pageQuery(r)
	return q, err
}
