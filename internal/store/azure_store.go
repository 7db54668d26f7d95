package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/ml"
)

// azureModelStore keeps the two artifacts as blobs in one container, for
// deployments where the trainer and the API servers do not share a disk.
type azureModelStore struct {
	client    *azblob.Client
	container string
}

// NewAzureModelStore creates a blob-backed store using shared-key
// credentials.
func NewAzureModelStore(accountName, accountKey, container string) (ModelStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid azure credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create azure blob client", err)
	}

	return &azureModelStore{client: client, container: container}, nil
}

func (s *azureModelStore) Save(ctx context.Context, scaler *ml.ScalerState, ensemble *ml.VotingEnsemble) error {
	if err := s.upload(ctx, ScalerArtifactName, scaler); err != nil {
		return err
	}
	return s.upload(ctx, EnsembleArtifactName, ensemble)
}

func (s *azureModelStore) Load(ctx context.Context) (*ml.ScalerState, *ml.VotingEnsemble, error) {
	var scaler ml.ScalerState
	if err := s.download(ctx, ScalerArtifactName, &scaler); err != nil {
		return nil, nil, err
	}
	var ensemble ml.VotingEnsemble
	if err := s.download(ctx, EnsembleArtifactName, &ensemble); err != nil {
		return nil, nil, err
	}
	return &scaler, &ensemble, nil
}

func (s *azureModelStore) upload(ctx context.Context, name string, value interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to encode artifact %s", name), err)
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, buf.Bytes(), nil); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to upload artifact %s", name), err)
	}
	return nil
}

func (s *azureModelStore) download(ctx context.Context, name string, value interface{}) error {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return apperrors.NewArtifactNotFoundError(
			fmt.Sprintf("artifact %s is missing; train before running inference", name), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewArtifactNotFoundError(fmt.Sprintf("artifact %s is unreadable", name), err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(value); err != nil {
		return apperrors.NewArtifactNotFoundError(fmt.Sprintf("artifact %s is unreadable", name), err)
	}
	return nil
}
