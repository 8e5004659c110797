package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unihaven/internal/domain"
)

// entityRoutes wires list/get/create/update/delete for one directory entity.
type entityRoutes[Req interface{ toEntity() T }, T any] struct {
	name   string
	list   func(context.Context) ([]T, error)
	get    func(context.Context, int64) (T, error)
	create func(context.Context, T) (T, error)
	update func(context.Context, int64, T) (T, error)
	delete func(context.Context, int64) error
}

func (e entityRoutes[Req, T]) mount(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		out, err := e.list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := e.create(r.Context(), req.toEntity())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := e.get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req Req
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := e.update(r.Context(), id, req.toEntity())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := e.delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusMessage{Status: fmt.Sprintf("%s %d deleted", e.name, id)})
	})
}

func (h *Handlers) mountDirectory(api chi.Router) {
	d := h.Directory
	api.Route("/universities", entityRoutes[universityRequest, domain.University]{
		name: "University", list: d.ListUniversities, get: d.GetUniversity,
		create: d.CreateUniversity, update: d.UpdateUniversity, delete: d.DeleteUniversity,
	}.mount)
	api.Route("/campuses", entityRoutes[campusRequest, domain.Campus]{
		name: "Campus", list: d.ListCampuses, get: d.GetCampus,
		create: d.CreateCampus, update: d.UpdateCampus, delete: d.DeleteCampus,
	}.mount)
	api.Route("/members", func(r chi.Router) {
		entityRoutes[memberRequest, domain.Member]{
			name: "Member", list: d.ListMembers, get: d.GetMember,
			create: d.CreateMember, update: d.UpdateMember, delete: d.DeleteMember,
		}.mount(r)
		r.Get("/{id}/reservations", h.memberReservations)
	})
	api.Route("/specialists", entityRoutes[specialistEntityRequest, domain.Specialist]{
		name: "Specialist", list: d.ListSpecialists, get: d.GetSpecialist,
		create: d.CreateSpecialist, update: d.UpdateSpecialist, delete: d.DeleteSpecialist,
	}.mount)
	api.Route("/owners", entityRoutes[ownerRequest, domain.Owner]{
		name: "Owner", list: d.ListOwners, get: d.GetOwner,
		create: d.CreateOwner, update: d.UpdateOwner, delete: d.DeleteOwner,
	}.mount)
}
