package runtime

import (
	"context"
	"fmt"
	goruntime "runtime"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	cranev1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/ci-tools/docker-scout-action/internal/log"
)

// scannerRepository is where the docker scout CLI image is pulled from.
var scannerRepository = "docker.io/docker/scout-cli"

// ScannerImage returns the scanner image reference for version, exactly as
// it is handed to the container engine.
func ScannerImage(version string) (string, error) {
	image := fmt.Sprintf("%s:%s", scannerRepository, version)
	if _, err := name.ParseReference(image); err != nil {
		return "", fmt.Errorf("invalid docker scout version %q: %w", version, err)
	}
	return image, nil
}

// imageList resolves the scanner image to a digest pinned reference. An
// unreachable registry yields an empty list.
func imageList(ctx context.Context, version string) []string {
	logger := logr.FromContextOrDiscard(ctx)
	options := []crane.Option{
		crane.WithContext(ctx),
		crane.WithAuthFromKeychain(authn.DefaultKeychain),
		crane.WithPlatform(&cranev1.Platform{
			OS:           "linux",
			Architecture: goruntime.GOARCH,
		}),
	}

	imageList := []string{}
	image, err := ScannerImage(version)
	if err != nil {
		logger.Error(err, "unable to build scanner image reference")
		return imageList
	}

	logger.V(log.DBG).Info("resolving image digest", "image", image)
	digest, err := crane.Digest(image, options...)
	if err != nil {
		logger.Error(fmt.Errorf("could not retrieve image digest: %w", err), "crane error")
		return imageList
	}

	return append(imageList, fmt.Sprintf("%s@%s", scannerRepository, digest))
}

// Assets returns the images a run of the action with the given scanner
// version depends on.
func Assets(ctx context.Context, version string) AssetData {
	return AssetData{
		Images: imageList(ctx, version),
	}
}

// AssetData is the publicly accessible representation of the action's
// runtime assets. It is serialized to JSON for the end-user.
type AssetData struct {
	Images []string `json:"images"`
}
