// Package manifest reads and patches UPM-style package manifests.
//
// A manifest is a JSON object with two recognized top-level fields:
//
//	{
//	  "scopedRegistries": [
//	    {
//	      "name": "Magic Leap",
//	      "url": "https://registry.npmjs.org",
//	      "scopes": ["com.magicleap"]
//	    }
//	  ],
//	  "dependencies": {
//	    "com.example.pkg": "1.0.0"
//	  }
//	}
//
// The scopedRegistries array is decoded and re-encoded structurally.
// The dependencies object is deliberately treated as opaque text: its
// keys are package names unknown ahead of time, and a schema-bound
// decode would not round-trip it faithfully. Load captures the region
// between its braces by textual scan and Save splices it back verbatim.
//
// The scan locates the first occurrence of the "dependencies" key, the
// next '{', and the first unescaped '}'. It is intentionally simple and
// is defeated by nested braces or brace characters inside string values
// within the region.
//
// # Usage
//
//	doc, err := manifest.Load("Packages/manifest.json")
//	if err != nil {
//	    return err
//	}
//	if !doc.ContainsRegistry("Magic Leap") {
//	    doc.AddRegistry(manifest.Registry{
//	        Name:   "Magic Leap",
//	        URL:    "https://registry.npmjs.org",
//	        Scopes: []string{"com.magicleap"},
//	    })
//	    if err := doc.Save(); err != nil {
//	        return err
//	    }
//	}
package manifest
