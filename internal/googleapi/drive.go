package googleapi

import (
	"context"

	"google.golang.org/api/drive/v3"

	"github.com/steipete/gsheet/internal/googleauth"
)

func NewDrive(ctx context.Context, key []byte) (*drive.Service, error) {
	opts, err := googleauth.Options(ctx, key, googleauth.ServiceDrive)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, opts...)
}
