package upload

import (
	"fmt"

	"alumglass-backend/pkg/config"
)

// Uploader persists an image payload and returns a publicly
// resolvable URL for it. The two strategies are interchangeable;
// which one runs is a deployment-time choice made at startup.
type Uploader interface {
	Upload(filename string, data []byte) (string, error)
}

// New builds the uploader selected by the configuration
func New(cfg *config.UploadConfig) (Uploader, error) {
	switch cfg.Driver {
	case "local", "":
		return &Local{
			Dir:        cfg.LocalDir,
			PublicPath: cfg.PublicPath,
		}, nil
	case "remote":
		if cfg.RemoteEndpoint == "" {
			return nil, fmt.Errorf("upload driver %q requires UPLOAD_REMOTE_ENDPOINT", cfg.Driver)
		}
		return &Remote{
			Endpoint: cfg.RemoteEndpoint,
			Folder:   cfg.RemoteFolder,
			APIKey:   cfg.RemoteAPIKey,
		}, nil
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}
