// Package config provides configuration parsing for upmkit projects.
//
// The configuration is stored in upmkit.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-project",
//	  "manifest": "Packages/manifest.json",
//	  "registry": {
//	    "name": "Magic Leap",
//	    "url": "https://registry.npmjs.org",
//	    "scopes": ["com.magicleap"]
//	  },
//	  "install": {
//	    "package": "com.magicleap.unitysdk",
//	    "timeout": "60s",
//	    "cache": ".upmkit/packages"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 4873,
//	    "dir": "registry"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Manifest:", cfg.ManifestPath())
package config
