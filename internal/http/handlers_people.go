package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"fiado/internal/core"
	"fiado/internal/storage"
)

// handlePeople lists people (GET, rendered as a partial) or creates one (POST).
func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPeoplePartial(w, r)
	case http.MethodPost:
		s.createPerson(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderPeoplePartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	people, err := s.getPeople(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "People list error", "error", err)
		InternalServerError("Erro carregando pessoas").Write(w)
		return
	}
	s.renderPartial(w, r, "people_list.html", struct {
		People []core.Person
	}{People: people})
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	person := core.Person{Name: name}
	if err := person.Validate(); err != nil {
		UnprocessableEntityError("Nome inválido").Write(w)
		return
	}

	created, err := s.store.CreatePerson(r.Context(), name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create person", "name", name, "error", err)
		InternalServerError("Erro ao salvar pessoa").Write(w)
		return
	}

	s.invalidatePeople()
	slog.InfoContext(r.Context(), "Person created", "person_id", created.ID, "name", created.Name)

	NewHTMXResponse().
		TriggerPeopleChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Pessoa cadastrada: %s", created.Name)).
		Write(w)
}

// handleDeletePerson removes a person. Their debts go with them (cascade).
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("ID da pessoa ausente").Write(w)
		return
	}

	if err := s.store.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Pessoa não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete person", "person_id", id, "error", err)
		InternalServerError("Erro ao excluir pessoa").Write(w)
		return
	}

	s.invalidatePeople()
	NewHTMXResponse().
		TriggerPeopleChanged().
		TriggerDebtDeleted().
		TriggerSuccessNotification("Pessoa excluída, junto com suas dívidas").
		Write(w)
}

// handleCategories lists categories (GET) or creates one (POST).
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderCategoriesPartial(w, r)
	case http.MethodPost:
		s.createCategory(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderCategoriesPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	cats, err := s.getCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
		InternalServerError("Erro carregando categorias").Write(w)
		return
	}
	s.renderPartial(w, r, "category_list.html", struct {
		Categories []core.Category
	}{Categories: cats})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	color := sanitizeInput(r.Form.Get("color"))
	cat := core.Category{Name: name, Color: color}
	if err := cat.Validate(); err != nil {
		UnprocessableEntityError("Nome inválido").Write(w)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), name, color)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "name", name, "error", err)
		InternalServerError("Erro ao salvar categoria").Write(w)
		return
	}

	s.invalidateCategories()
	NewHTMXResponse().
		TriggerCategoriesChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Categoria cadastrada: %s", created.Name)).
		Write(w)
}

// handleDeleteCategory removes a category. Debts keep existing and fall back
// to no category.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("ID da categoria ausente").Write(w)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Categoria não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", "category_id", id, "error", err)
		InternalServerError("Erro ao excluir categoria").Write(w)
		return
	}

	s.invalidateCategories()
	NewHTMXResponse().
		TriggerCategoriesChanged().
		TriggerSuccessNotification("Categoria excluída").
		Write(w)
}
