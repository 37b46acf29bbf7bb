// Package storage uploads content assets to the media host.
//
// Cloudinary is the production implementation. NoopStore keeps assets in
// memory and is used when Cloudinary credentials are absent.
package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// CloudinaryConfig holds account credentials and the folder prefix.
type CloudinaryConfig struct {
	CloudName  string
	APIKey     string
	APISecret  string
	RootFolder string
	// BaseURL overrides https://api.cloudinary.com (tests).
	BaseURL string
}

// Configured reports whether all credentials are present.
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// ParseCloudinaryURL reads cloudinary://<key>:<secret>@<cloud>.
func ParseCloudinaryURL(raw string) (CloudinaryConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return CloudinaryConfig{}, fmt.Errorf("parse CLOUDINARY_URL: %w", err)
	}
	if u.Scheme != "cloudinary" {
		return CloudinaryConfig{}, fmt.Errorf("parse CLOUDINARY_URL: unexpected scheme %q", u.Scheme)
	}
	secret, _ := u.User.Password()
	cfg := CloudinaryConfig{
		CloudName: u.Host,
		APIKey:    u.User.Username(),
		APISecret: secret,
	}
	if !cfg.Configured() {
		return CloudinaryConfig{}, fmt.Errorf("parse CLOUDINARY_URL: missing cloud name, key or secret")
	}
	return cfg, nil
}

// folderPath joins the root folder and a content folder, e.g. TLWDF/team.
func folderPath(root, folder string) string {
	root = strings.Trim(root, "/")
	folder = strings.Trim(folder, "/")
	switch {
	case root == "":
		return folder
	case folder == "":
		return root
	default:
		return root + "/" + folder
	}
}
