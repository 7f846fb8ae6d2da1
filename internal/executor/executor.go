// Package executor dispatches completed, validated commands to the
// inventory store. Arguments are coerced and range-checked here before
// dispatch; store failures are mapped into the stable error taxonomy;
// reversible operations get their inverse precomputed from the applied
// values.
package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"

	"stockhand/internal/catalog"
	"stockhand/internal/command"
	"stockhand/internal/inventory"
)

const defaultLowStockThreshold = 10

// Outcome is the result of one dispatch, with undo metadata.
type Outcome struct {
	Result     command.ExecutionResult
	Reversible bool
	Reverse    *command.ToolCall
}

type handlerFunc func(ctx context.Context, params map[string]any) (data any, summary string, reverse *command.ToolCall, err error)

// Executor maps catalog names to inventory operations.
type Executor struct {
	store    inventory.Store
	validate *validator.Validate
	handlers map[string]handlerFunc
}

// New builds an executor and checks the handler table covers the whole
// catalog, so a spec without a handler fails at startup instead of at
// call time.
func New(cat *catalog.Catalog, store inventory.Store) (*Executor, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	e := &Executor{store: store, validate: v}
	e.handlers = map[string]handlerFunc{
		catalog.ToolTransferStock:   e.transferStock,
		catalog.ToolAdjustStock:     e.adjustStock,
		catalog.ToolCheckStock:      e.checkStock,
		catalog.ToolSearchProduct:   e.searchProduct,
		catalog.ToolCreatePartsList: e.createPartsList,
		catalog.ToolLowStockItems:   e.lowStockItems,
	}

	for _, name := range cat.Names() {
		if _, ok := e.handlers[name]; !ok {
			return nil, fmt.Errorf("no handler for catalog tool %q", name)
		}
	}
	if len(e.handlers) != len(cat.Names()) {
		return nil, fmt.Errorf("handler table does not match catalog (%d handlers, %d tools)",
			len(e.handlers), len(cat.Names()))
	}
	return e, nil
}

// Execute dispatches one tool call. The returned result is always
// well-formed; errors are folded into it, never propagated raw.
func (e *Executor) Execute(ctx context.Context, call command.ToolCall) Outcome {
	handler, ok := e.handlers[call.Action]
	if !ok {
		return failure(command.KindValidation, fmt.Sprintf("unknown operation %q", call.Action))
	}

	data, summary, reverse, err := handler(ctx, call.Parameters)
	if err != nil {
		kind, message := mapError(err)
		log.Debug().Str("action", call.Action).Str("kind", string(kind)).Err(err).
			Msg("executor: dispatch failed")
		return failure(kind, message)
	}

	log.Info().Str("action", call.Action).Bool("reversible", reverse != nil).
		Msg("executor: command applied")
	return Outcome{
		Result: command.ExecutionResult{
			Success: true,
			Data:    data,
			Message: summary,
		},
		Reversible: reverse != nil,
		Reverse:    reverse,
	}
}

func failure(kind command.ErrorKind, message string) Outcome {
	return Outcome{Result: command.ExecutionResult{
		Success:   false,
		ErrorKind: kind,
		Message:   message,
	}}
}

// argumentError marks coercion/validation failures for taxonomy mapping.
type argumentError struct {
	message string
}

func (e *argumentError) Error() string { return e.message }

func mapError(err error) (command.ErrorKind, string) {
	var argErr *argumentError
	if errors.As(err, &argErr) {
		return command.KindValidation, argErr.message
	}
	var notFound *inventory.NotFoundError
	if errors.As(err, &notFound) {
		return command.KindNotFound,
			fmt.Sprintf("%s; check the reference or create it first", notFound.Error())
	}
	var insufficient *inventory.InsufficientStockError
	if errors.As(err, &insufficient) {
		return command.KindExecution, insufficient.Error()
	}
	log.Warn().Err(err).Msg("executor: unclassified store failure")
	return command.KindExecution, "the inventory operation failed; no changes were applied"
}

// decode coerces raw parameters into a typed argument struct and
// validates it. Numeric strings are accepted ("10" becomes 10); rule
// violations come back as user-presentable argumentErrors.
func (e *Executor) decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return &argumentError{message: fmt.Sprintf("arguments do not fit the operation: %v", err)}
	}

	if err := e.validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, ruleMessage(fe))
			}
			return &argumentError{message: strings.Join(msgs, "; ")}
		}
		return fmt.Errorf("validate arguments: %w", err)
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", fe.Field(), snakeCase(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// snakeCase turns a Go field name like FromWarehouseID into
// from_warehouse_id for user-facing messages.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && name[i-1] >= 'a' && name[i-1] <= 'z'
			nextLower := i+1 < len(name) && name[i+1] >= 'a' && name[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
