// Package config manages the skillhub configuration document, a JSON file
// (default ~/.skillhub/config.json) with a "local" section (skill_path,
// install_default) and a "registry" section (url, branch, cache_dir).
// Values are read fresh on every invocation and written back as whole
// documents.
package config
