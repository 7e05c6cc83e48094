package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainResource "tour-booking/internal/domain/resource"
	"tour-booking/internal/usecase/resource"
	"tour-booking/pkg/utils"
)

// ResourceHandler serves list/get/create/update/delete for one resource.
type ResourceHandler[T any] struct {
	service  *resource.Service[T]
	newDraft func() resource.Draft[T]
	newPatch func() resource.Patch[T]
	scope    func(c *gin.Context) domainResource.Scope
	prepare  func(c *gin.Context, entity *T) error
	populate []string
}

type ResourceOption[T any] func(*ResourceHandler[T])

// WithScope pins list results, typically to a parent from the path.
func WithScope[T any](scope func(c *gin.Context) domainResource.Scope) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.scope = scope }
}

// WithPrepare fills fields of a new entity from the request, such as the
// parent id of a nested route or the current user.
func WithPrepare[T any](prepare func(c *gin.Context, entity *T) error) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.prepare = prepare }
}

// WithPopulate names the relations GetOne resolves.
func WithPopulate[T any](populate ...string) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.populate = populate }
}

func NewResourceHandler[T any](
	service *resource.Service[T],
	newDraft func() resource.Draft[T],
	newPatch func() resource.Patch[T],
	opts ...ResourceOption[T],
) *ResourceHandler[T] {
	h := &ResourceHandler[T]{
		service:  service,
		newDraft: newDraft,
		newPatch: newPatch,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ResourceHandler[T]) GetAll(c *gin.Context) {
	var scope domainResource.Scope
	if h.scope != nil {
		scope = h.scope(c)
	}

	items, d, err := h.service.List(c.Request.Context(), c.Request.URL.Query(), scope)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := d.Project(items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, gin.H{"data": data}, len(items))
}

func (h *ResourceHandler[T]) GetOne(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), id, h.populate...)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"data": entity})
}

func (h *ResourceHandler[T]) CreateOne(c *gin.Context) {
	draft := h.newDraft()
	if !bindJSON(c, draft) {
		return
	}

	entity, err := draft.Build()
	if err != nil {
		respondWithError(c, err)
		return
	}

	if h.prepare != nil {
		if err := h.prepare(c, entity); err != nil {
			respondWithError(c, err)
			return
		}
	}

	created, err := h.service.Create(c.Request.Context(), entity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "", gin.H{"data": created})
}

func (h *ResourceHandler[T]) UpdateOne(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	patch := h.newPatch()
	if !bindJSON(c, patch) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"data": updated})
}

func (h *ResourceHandler[T]) DeleteOne(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
