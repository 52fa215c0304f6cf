// Package config holds the server settings and the layers they come from.
//
// Precedence, highest first:
//
//	flags > MOCKDIR_* environment > config file (.yaml/.yml/.toml) > defaults
//
// Each layer only overrides values it actually sets. Sources records which
// layer a value came from, which `mockdir --log-level=debug` prints at startup.
//
// ResolveRoot turns the configured path into an opened mock data root:
//
//	root, err := config.ResolveRoot(cfg.Path, cfg.BaseDir)
//	if err != nil {
//	    // config.ErrRootMissing or config.ErrRootNotDir
//	}
//	defer root.Close()
package config
