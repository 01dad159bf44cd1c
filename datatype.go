package mcbpx

// DatatypeFlag specifies data flags for the value of an item.  The field
// is reserved in the base protocol; these bits are the extension used by
// servers that negotiate them.
type DatatypeFlag uint8

const (
	// DatatypeFlagJSON indicates the server believes the value payload to be JSON.
	DatatypeFlagJSON = DatatypeFlag(0x01)

	// DatatypeFlagCompressed indicates the value payload is compressed.
	DatatypeFlagCompressed = DatatypeFlag(0x02)
)
