// Package loader reads form schema documents from disk, an fs.FS or HTTP.
package loader
