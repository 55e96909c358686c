package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

// ResolveCustomQuestions validates organizer-submitted question definitions and returns
// the normalized schema. Inputs whose ID matches a question in existing keep that ID so
// stored answers stay linked; every other question gets a fresh id. Any invalid entry
// rejects the whole batch.
func ResolveCustomQuestions(inputs []domain.CustomQuestionInput, existing []domain.CustomQuestion) ([]domain.CustomQuestion, error) {
	known := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		known[q.ID] = struct{}{}
	}

	verr := &domain.ValidationError{}
	out := make([]domain.CustomQuestion, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("customQuestions[%d]", i)

		text := strings.TrimSpace(in.Question)
		if text == "" {
			verr.Add(field+".question", "is required")
		}

		typ := domain.QuestionType(strings.ToLower(strings.TrimSpace(in.Type)))
		if !typ.Valid() {
			verr.Add(field+".type", fmt.Sprintf("must be one of text, textarea, select, checkbox, radio (got %q)", in.Type))
		}

		options := []string{}
		if typ.RequiresOptions() {
			options = normalizeOptions(in.Options)
			if len(options) == 0 {
				verr.Add(field+".options", fmt.Sprintf("at least one option is required for %s questions", typ))
			}
		}

		id := in.ID
		if _, ok := known[id]; !ok || id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			verr.Add(field+".id", "is duplicated")
		}
		seen[id] = struct{}{}

		out = append(out, domain.CustomQuestion{
			ID:       id,
			Question: text,
			Type:     typ,
			Options:  options,
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeOptions trims options and drops empty and repeated ones, keeping order.
func normalizeOptions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
