package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type assetTargetStub struct {
	calls   int
	kind    AssetKind
	dataURL string
}

func (s *assetTargetStub) ApplyAsset(_ context.Context, _ *models.JWTClaims, kind AssetKind, dataURL string) (string, error) {
	s.calls++
	s.kind = kind
	s.dataURL = dataURL
	return "logoUrl", nil
}

func TestAssetServiceUploadStoresDataURL(t *testing.T) {
	target := &assetTargetStub{}
	svc := NewAssetService(target, AssetConfig{MaxBytes: 1024}, nil)

	resp, err := svc.Upload(context.Background(), adminClaims(models.CapabilityManageBranding), AssetKindLogo, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.MIME)
	assert.Equal(t, int64(len(pngHeader)), resp.Bytes)
	assert.Equal(t, 1, target.calls)
	assert.True(t, strings.HasPrefix(target.dataURL, "data:image/png;base64,"))
}

func TestAssetServiceRejectsOversizeBeforeWriting(t *testing.T) {
	target := &assetTargetStub{}
	svc := NewAssetService(target, AssetConfig{MaxBytes: 16}, nil)
	actor := adminClaims(models.CapabilityManageBranding)
	payload := append(append([]byte{}, pngHeader...), make([]byte, 32)...)

	_, err := svc.Upload(context.Background(), actor, AssetKindLogo, int64(len(payload)), bytes.NewReader(payload))
	assert.ErrorIs(t, err, appErrors.ErrOversizeUpload)

	// Undeclared size is still bounded by what is actually read.
	_, err = svc.Upload(context.Background(), actor, AssetKindLogo, -1, bytes.NewReader(payload))
	assert.ErrorIs(t, err, appErrors.ErrOversizeUpload)

	assert.Equal(t, 0, target.calls)
}

func TestAssetServiceRejectsNonImage(t *testing.T) {
	target := &assetTargetStub{}
	svc := NewAssetService(target, AssetConfig{}, nil)

	_, err := svc.Upload(context.Background(), adminClaims(models.CapabilityManageBranding), AssetKindBackground, 11, strings.NewReader("hello world"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 0, target.calls)
}

func TestAssetServiceChecksCapabilityPerKind(t *testing.T) {
	target := &assetTargetStub{}
	svc := NewAssetService(target, AssetConfig{}, nil)
	siteOnly := adminClaims(models.CapabilityManageSite)

	_, err := svc.Upload(context.Background(), siteOnly, AssetKindLogo, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Upload(context.Background(), siteOnly, AssetKindTutor, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, AssetKindTutor, target.kind)

	_, err = svc.Upload(context.Background(), siteOnly, AssetKind("banner"), 1, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
