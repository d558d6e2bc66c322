// Package assets provides the CSS styles applied to markdown slides.
//
// Styles are loaded through a small layered system:
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled into the binary
//	    ├── FilesystemLoader  - {basePath}/styles/{name}.css on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// HTML slides are never styled: they are rendered exactly as authored.
//
// Style names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within its base path.
package assets
