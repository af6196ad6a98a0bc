package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppReader is the subset of Client needed to look applications up
type AppReader interface {
	ListApplications(ctx context.Context) ([]Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
}

// FindByName returns the first application whose name matches exactly, or nil
func FindByName(apps []Application, name string) *Application {
	for i := range apps {
		if apps[i].Name == name {
			return &apps[i]
		}
	}
	return nil
}

// ResolveApp resolves an application by ID or name. A UUID-shaped
// identifier is fetched directly; anything else is matched by name.
func ResolveApp(ctx context.Context, client AppReader, ident string) (*Application, error) {
	if id, err := uuid.Parse(ident); err == nil {
		app, err := client.GetApplication(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("application %q not found", ident)
			}
			return nil, err
		}
		return app, nil
	}

	apps, err := client.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	if app := FindByName(apps, ident); app != nil {
		return app, nil
	}
	return nil, fmt.Errorf("application %q not found", ident)
}

// DomainLister is the subset of Client needed to look custom domains up
type DomainLister interface {
	ListDomains(ctx context.Context, appID uuid.UUID) ([]CustomDomain, error)
}

// ResolveDomain resolves a custom domain of an application by ID or exact
// domain name
func ResolveDomain(ctx context.Context, client DomainLister, appID uuid.UUID, ident string) (*CustomDomain, error) {
	domains, err := client.ListDomains(ctx, appID)
	if err != nil {
		return nil, err
	}

	id, idErr := uuid.Parse(ident)
	for i := range domains {
		if domains[i].Domain == ident || (idErr == nil && domains[i].ID == id) {
			return &domains[i], nil
		}
	}
	return nil, fmt.Errorf("domain %q not found", ident)
}
