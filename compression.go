package mcbpx

import "github.com/golang/snappy"

const (
	defaultCompressionMinSize  = 32
	defaultCompressionMinRatio = 0.83
)

// ValueCompressor compresses and decompresses value payloads, flagging
// compressed values through the datatype field.
type ValueCompressor struct {
	// MinSize is the smallest value worth compressing; zero selects the default.
	MinSize int

	// MinRatio is the largest compressed:original ratio worth keeping;
	// zero selects the default.
	MinRatio float64

	// Some users require the ability to disable decompressing values, e.g. if
	// they read items from the server and then want to store them compressed
	// as a backup.
	DisableDecompression bool
}

func (vc ValueCompressor) Compress(datatype DatatypeFlag, value []byte) ([]byte, DatatypeFlag, error) {
	// If the value is already compressed then we don't want to compress it again.
	if (datatype & DatatypeFlagCompressed) != 0 {
		return value, datatype, nil
	}

	minSize := vc.MinSize
	if minSize == 0 {
		minSize = defaultCompressionMinSize
	}
	minRatio := vc.MinRatio
	if minRatio == 0 {
		minRatio = defaultCompressionMinRatio
	}

	// Only compress values that are large enough to be worthwhile.
	if len(value) <= minSize {
		return value, datatype, nil
	}

	compressedValue := snappy.Encode(nil, value)
	// Only return the compressed value if the ratio of compressed:original is
	// small enough.
	if float64(len(compressedValue))/float64(len(value)) > minRatio {
		return value, datatype, nil
	}

	return compressedValue, datatype | DatatypeFlagCompressed, nil
}

func (vc ValueCompressor) Decompress(datatype DatatypeFlag, value []byte) ([]byte, DatatypeFlag, error) {
	if vc.DisableDecompression {
		return value, datatype, nil
	}

	if (datatype & DatatypeFlagCompressed) == 0 {
		return value, datatype, nil
	}

	newValue, err := snappy.Decode(nil, value)
	if err != nil {
		return nil, 0, err
	}

	return newValue, datatype & ^DatatypeFlagCompressed, nil
}
