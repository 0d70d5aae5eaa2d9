package api

import (
	"net/http"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/h2hmarketing/site/internal/domain/form"
	"github.com/h2hmarketing/site/internal/scene"
)

// SchemaHandler publishes JSON Schemas of the request bodies so clients
// can validate before posting.
type SchemaHandler struct {
	once    sync.Once
	schemas map[string]*jsonschema.Schema
}

// NewSchemaHandler creates a new schema handler. Schemas are reflected on
// first use.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

func (h *SchemaHandler) load() {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	h.schemas = map[string]*jsonschema.Schema{
		"contact":          reflector.Reflect(&form.Contact{}),
		"contact-validate": reflector.Reflect(&validateRequest{}),
		"chat":             reflector.Reflect(&chatRequest{}),
		"scene":            reflector.Reflect(&scene.Request{}),
	}
}

// Names lists the published schemas.
func (h *SchemaHandler) Names() []string {
	h.once.Do(h.load)
	names := make([]string, 0, len(h.schemas))
	for n := range h.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HandleSchema handles GET /api/schemas/{name}.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	const op = "api.schema"
	h.once.Do(h.load)
	s, ok := h.schemas[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	b, err := s.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
