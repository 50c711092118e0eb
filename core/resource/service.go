package resource

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

var (
	// errors
	ErrNotFound        = errors.New("not found")
	ErrActionForbidden = errors.New("action not available")
)

type (
	// Backend is the remote REST API. Bodies are returned as decoded, without schema validation.
	// An empty token means the request is sent without an Authorization header.
	Backend interface {
		List(ctx context.Context, def *Definition, token string) (Body, error)
		Get(ctx context.Context, def *Definition, id, token string) (Body, error)
		Create(ctx context.Context, def *Definition, payload Payload, files []File, token string) (Body, error)
		Update(ctx context.Context, def *Definition, id string, payload Payload, token string) (Body, error)
		Delete(ctx context.Context, def *Definition, id, token string) (Body, error)
		Stats(ctx context.Context, token string) (Body, error)
		RecentActivity(ctx context.Context, token string) (Body, error)
		Health(ctx context.Context) (Body, error)
	}

	Service struct {
		backend Backend
	}
)

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// List fetches the whole collection, newest first.
// The backend returns collections oldest first.
func (svc *Service) List(ctx context.Context, def *Definition) ([]Record, error) {
	if def.Singleton {
		rec, err := svc.Single(ctx, def)
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			return []Record{}, nil
		}
		return []Record{rec}, nil
	}

	body, err := svc.backend.List(ctx, def, "")
	if err != nil {
		return nil, err
	}
	recs := body.Records(def.PluralKey)
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// Single fetches the record of a singleton resource.
func (svc *Service) Single(ctx context.Context, def *Definition) (Record, error) {
	body, err := svc.backend.List(ctx, def, "")
	if err != nil {
		return nil, err
	}
	rec, ok := body.Record(def.SingularKey)
	if !ok {
		return Record{}, nil // nothing saved yet
	}
	return rec, nil
}

func (svc *Service) Get(ctx context.Context, def *Definition, id string) (Record, error) {
	body, err := svc.backend.Get(ctx, def, id, "")
	if err != nil {
		return nil, err
	}
	rec, ok := body.Record(def.SingularKey)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, fmt.Sprintf("%s %q", def.SingularKey, id))
	}
	return rec, nil
}

// Create, Update and Delete require an authenticated session:
// core.ErrNotAuthorized is returned before any network call otherwise.

func (svc *Service) Create(ctx context.Context, sess session.Session, def *Definition, payload Payload, files ...File) (Result, error) {
	if err := svc.check(sess, def, ActionCreate); err != nil {
		return Result{}, err
	}
	body, err := svc.backend.Create(ctx, def, payload, files, sess.Token)
	if err != nil {
		return Result{}, err
	}
	return resultFrom(body), nil
}

func (svc *Service) Update(ctx context.Context, sess session.Session, def *Definition, id string, payload Payload) (Result, error) {
	if err := svc.check(sess, def, ActionEdit); err != nil {
		return Result{}, err
	}
	body, err := svc.backend.Update(ctx, def, id, payload, sess.Token)
	if err != nil {
		return Result{}, err
	}
	return resultFrom(body), nil
}

func (svc *Service) Delete(ctx context.Context, sess session.Session, def *Definition, id string) (Result, error) {
	if err := svc.check(sess, def, ActionDelete); err != nil {
		return Result{}, err
	}
	body, err := svc.backend.Delete(ctx, def, id, sess.Token)
	if err != nil {
		return Result{}, err
	}
	return resultFrom(body), nil
}

func (svc *Service) check(sess session.Session, def *Definition, action string) error {
	if !sess.Authenticated() {
		return core.ErrNotAuthorized
	}
	if !def.Can(action) {
		return errors.Wrap(ErrActionForbidden, fmt.Sprintf("%s %s", action, def.Name))
	}
	return nil
}

// Stats returns the dashboard totals. Zeros are returned along with the error when the fetch fails.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	body, err := svc.backend.Stats(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	return statsFrom(body), nil
}

// Recent returns up to limit recent sign-ups.
func (svc *Service) Recent(ctx context.Context, limit int) ([]Activity, error) {
	body, err := svc.backend.RecentActivity(ctx, "")
	if err != nil {
		return nil, err
	}
	recs := body.Records("recent_users")
	if len(recs) > limit {
		recs = recs[:limit]
	}
	acts := make([]Activity, 0, len(recs))
	for _, rec := range recs {
		acts = append(acts, Activity{ID: rec.ID(), User: rec.String("name"), At: rec.CreatedAt()})
	}
	return acts, nil
}

func (svc *Service) Health(ctx context.Context) (Body, error) {
	return svc.backend.Health(ctx)
}
