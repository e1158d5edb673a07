package utils

const (
	ContentTypeHeader        = "Content-Type"
	ContentDispositionHeader = "Content-Disposition"
	AcceptHeader             = "Accept"
	UserAgentHeader          = "User-Agent"
)

const (
	JSONContentType = "application/json"
	VSIXContentType = "application/vsix"
)

const (
	HTTPAPIVersion = "application/json;api-version=3.0-preview.1"
	UserAgent      = "Offline VSIX/1.0"
)

const (
	GalleryQueryURL     = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"
	GalleryAssetHostFmt = "https://%s.gallery.vsassets.io"
	VSIXPackageAsset    = "Microsoft.VisualStudio.Services.VSIXPackage"
	OpenVSXAPIURL       = "https://open-vsx.org/api"

	// FilterTypeExtensionName selects an extension by its publisher.name ID.
	FilterTypeExtensionName = 7
	// QueryFlags asks for version information in the query response.
	QueryFlags = 914
)

const DefaultDestination = "extensions"
