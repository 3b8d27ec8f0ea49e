// Package config provides configuration parsing for dndlist.
//
// The configuration is stored in dndlist.json next to the application. The
// file is JSONC: // and /* */ comments and trailing commas are accepted.
//
// # Configuration File Structure
//
//	{
//	  // diagnostics server
//	  "inspect": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "allowedOrigins": ["http://localhost:3000"],
//	  },
//	  "metrics": { "enabled": true, "namespace": "dndlist" },
//	  "tracing": { "enabled": false, "tracerName": "dndlist" },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspect.Addr())
package config
