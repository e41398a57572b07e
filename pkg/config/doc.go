// Package config resolves the harvester's deploy-time configuration.
//
// Values are layered, later sources winning:
//
//  1. compiled-in defaults (DefaultConfig)
//  2. a YAML file: $AQISCRAPER_CONFIG, ./.aqiscraper.yaml or
//     ~/.config/aqiscraper/config.yaml
//  3. a .env file in the working directory
//  4. AQISCRAPER_* environment variables
//
// Nothing is read from command-line flags.
package config
