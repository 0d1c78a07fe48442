package scenario

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/evan/internal/event/path"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return tomlName(f.Tag.Get("toml"))
	})
}

func tomlName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks struct constraints and the semantic rules of the
// scenario: paths must parse, labels must be unique, delegates need a
// delegate path under the capture path, lua actions need a script and
// steps may only name known labels.
// It returns a *ValidationError listing every problem, or nil.
func (sc *Scenario) Validate() error {
	var fields []FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := validate.Struct(sc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			add(fieldName(fe.Namespace()), "%s", tagMessage(fe))
		}
	}

	labels := make(map[string]bool, len(sc.Subscriptions))
	for i, sub := range sc.Subscriptions {
		field := fmt.Sprintf("subscriptions[%d]", i)
		if sub.Label != "" {
			if labels[sub.Label] {
				add(field+".label", "duplicate label %q", sub.Label)
			}
			labels[sub.Label] = true
		}

		capture, err := path.Parse(sub.Path)
		if err != nil {
			add(field+".path", "%v", err)
		}

		switch sub.KindOrDefault() {
		case KindDelegate:
			if sub.Delegate == "" {
				add(field+".delegate", "required for kind delegate")
				break
			}
			delegate, err := path.Parse(sub.Delegate)
			switch {
			case err != nil:
				add(field+".delegate", "%v", err)
			case !delegate.IsUnder(capture):
				add(field+".delegate", "%q is not under %q", sub.Delegate, sub.Path)
			}
		default:
			if sub.Delegate != "" {
				add(field+".delegate", "only allowed for kind delegate")
			}
		}

		if sub.ActionOrDefault() == ActionLua && strings.TrimSpace(sub.Script) == "" {
			add(field+".script", "required for action lua")
		}
	}

	for i, step := range sc.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if _, err := path.Parse(step.Path); err != nil {
			add(field+".path", "%v", err)
		}

		switch step.Op {
		case OpTrigger, OpBroadcast:
			if step.Event == "" {
				add(field+".event", "required for op %s", step.Op)
			}
			if step.Label != "" {
				add(field+".label", "only allowed for op off")
			}
		case OpOff:
			switch {
			case step.Label != "" && !labels[step.Label]:
				add(field+".label", "unknown label %q", step.Label)
			case step.Label == "" && step.Event == "":
				add(field, "op off needs a label or an event")
			}
		}

		if step.ExpectNone && len(step.Expect) > 0 {
			add(field+".expect_none", "conflicts with expect")
		}
		for j, hit := range step.Expect {
			label, p, ok := SplitHit(hit)
			hitField := fmt.Sprintf("%s.expect[%d]", field, j)
			if !ok {
				add(hitField, "%q is not label@path", hit)
				continue
			}
			if !labels[label] {
				add(hitField, "unknown label %q", label)
			}
			if _, err := path.Parse(p); err != nil {
				add(hitField, "%v", err)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Scenario: sc.Name, Fields: fields}
}

// fieldName turns "Scenario.steps[0].op" into "steps[0].op".
func fieldName(namespace string) string {
	_, rest, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return rest
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("got %q, must be one of: %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain %q", fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}
