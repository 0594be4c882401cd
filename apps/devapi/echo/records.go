package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/record"
)

const entityKey = "entity"

type recordApi struct {
	repo   record.Repository
	logger core.Logger
}

func registerRecordAPI(g *echo.Group, jwt echo.MiddlewareFunc, repo record.Repository, logger core.Logger) {
	api := recordApi{repo: repo, logger: logger}

	eg := g.Group("/:entity", jwt, entityMiddleware)
	eg.GET("", api.list)
	eg.POST("", api.create, staffMiddleware())
	eg.PATCH("/:id", api.update, staffMiddleware())
	eg.DELETE("/:id", api.destroy, staffMiddleware())
}

// entityMiddleware rejects collections no schema is registered for.
func entityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		schema, err := entity.Lookup(ctx.Param("entity"))
		if err != nil {
			return err
		}
		ctx.Set(entityKey, schema.Name)
		return next(ctx)
	}
}

func entityName(ctx echo.Context) string {
	if name, ok := ctx.Get(entityKey).(string); ok {
		return name
	}
	return ctx.Param("entity")
}

// bindRecord decodes the JSON body; echo's binder would also copy path params into the map.
func bindRecord(ctx echo.Context) (entity.RawRecord, error) {
	var rec entity.RawRecord
	if err := json.NewDecoder(ctx.Request().Body).Decode(&rec); err != nil {
		return nil, errInvalidBody
	}
	if rec == nil {
		return nil, errInvalidBody
	}
	return rec, nil
}

// list answers every record of the collection; each query param is an equality filter.
func (api *recordApi) list(ctx echo.Context) error {
	filter := make(record.Filter)
	for key, vals := range ctx.QueryParams() {
		if len(vals) > 0 {
			filter[key] = vals[0]
		}
	}

	recs, err := api.repo.List(ctx.Request().Context(), entityName(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "listing records")
	}
	if recs == nil {
		recs = []entity.RawRecord{}
	}
	return ctx.JSON(http.StatusOK, success(recs))
}

func (api *recordApi) create(ctx echo.Context) error {
	rec, err := bindRecord(ctx)
	if err != nil {
		return err
	}
	name := entityName(ctx)
	if err = api.validate(name, rec); err != nil {
		return err
	}

	created, err := api.repo.Create(ctx.Request().Context(), name, rec)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, success(created, "created"))
}

func (api *recordApi) update(ctx echo.Context) error {
	patch, err := bindRecord(ctx)
	if err != nil {
		return err
	}

	updated, err := api.repo.Update(ctx.Request().Context(), entityName(ctx), ctx.Param("id"), patch)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, success(updated, "updated"))
}

func (api *recordApi) destroy(ctx echo.Context) error {
	if err := api.repo.Delete(ctx.Request().Context(), entityName(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.JSON(http.StatusOK, success(nil, "deleted"))
}

// validate requires a new record to fill at least one field of its schema.
func (api *recordApi) validate(name string, rec entity.RawRecord) error {
	schema, err := entity.Lookup(name)
	if err != nil {
		return err
	}
	for _, f := range schema.Fields {
		keys := append(append([]string{}, f.Keys...), f.Alt...)
		if _, ok := rec.First(keys...); ok {
			return nil
		}
	}
	api.logger.Debug("rejected empty "+name, rec)
	return core.NewValidationError(
		errors.Errorf("%s needs at least one of its fields", name),
		core.FieldError{Field: schema.Fields[0].Name, Error: "this field is required"},
	)
}
