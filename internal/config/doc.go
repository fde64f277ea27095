// Package config manages user-level settings stored at ~/.flame/config.yaml.
// Every key can be overridden from the environment with the FLAME_ prefix,
// e.g. FLAME_DEPENDENCY_INSTALLER.
package config
