package googleapi

import (
	"context"

	"google.golang.org/api/sheets/v4"

	"github.com/steipete/gsheet/internal/googleauth"
)

func NewSheets(ctx context.Context, key []byte) (*sheets.Service, error) {
	opts, err := googleauth.Options(ctx, key, googleauth.ServiceSheets)
	if err != nil {
		return nil, err
	}
	return sheets.NewService(ctx, opts...)
}
