package tour

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/tourguide/pkg/model"
)

// FallbackName is used for {userName} when no display name is set.
const FallbackName = "there"

// Resolve replaces each {key} token in text with bindings[key]. Tokens with
// no binding are left as they are.
func Resolve(text string, bindings map[string]string) string {
	if len(bindings) == 0 || !strings.Contains(text, "{") {
		return text
	}
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", bindings[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// ResolveStep returns a copy of step with {userName} substituted in title and
// content. The stored step is never modified.
func ResolveStep(step model.Step, userName string) model.Step {
	if userName == "" {
		userName = FallbackName
	}
	b := map[string]string{"userName": userName}
	step.Title = Resolve(step.Title, b)
	step.Content = Resolve(step.Content, b)
	return step
}
