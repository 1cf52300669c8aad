package providers

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Provider issues one availability query and returns the raw result page.
type Provider interface {
	Name() string
	Search(ctx context.Context, req models.FlightRequest) (*goquery.Document, error)
}

// DirectorySource lists the airports a carrier departs from.
type DirectorySource interface {
	Airports(ctx context.Context) (*models.IataDirectory, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
