// Package product parses burst product identifiers into BurstProduct records.
package product

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/burstcov/internal/domain/model"
)

// acquisitionLayout is the compact UTC timestamp used in product ids.
const acquisitionLayout = "20060102T150405"

// productPattern matches e.g.
// OPERA_L2_RTC-S1_T042-088905-IW1_20231009T140757Z_20231010T204936Z_S1A_30_v1.0
var productPattern = regexp.MustCompile(
	`_T(?P<orbit>\d{3})-(?P<burst>\d{6})-(?P<swath>IW[1-3])_(?P<acq>\d{8}T\d{6})Z_\d{8}T\d{6}Z_S1[AB]_`,
)

// burstIDPattern matches normalized burst ids such as t042_088905_iw1.
var burstIDPattern = regexp.MustCompile(`^t(\d{3})_(\d{6})_(iw[1-3])$`)

var (
	orbitIdx = productPattern.SubexpIndex("orbit")
	burstIdx = productPattern.SubexpIndex("burst")
	swathIdx = productPattern.SubexpIndex("swath")
	acqIdx   = productPattern.SubexpIndex("acq")
)

// Parse extracts burst id, orbit and acquisition time from a product id.
func Parse(productID string) (model.BurstProduct, error) {
	m := productPattern.FindStringSubmatch(productID)
	if m == nil {
		return model.BurstProduct{}, fmt.Errorf("%w: %q does not match the burst product pattern", ErrMalformedBurstIdentifier, productID)
	}

	orbit, err := strconv.Atoi(m[orbitIdx])
	if err != nil {
		return model.BurstProduct{}, fmt.Errorf("%w: %q: orbit: %w", ErrMalformedBurstIdentifier, productID, err)
	}
	acq, err := time.ParseInLocation(acquisitionLayout, m[acqIdx], time.UTC)
	if err != nil {
		return model.BurstProduct{}, fmt.Errorf("%w: %q: acquisition time: %w", ErrMalformedBurstIdentifier, productID, err)
	}

	return model.BurstProduct{
		ProductID:       productID,
		BurstID:         FormatBurstID(orbit, m[burstIdx], m[swathIdx]),
		OrbitNumber:     orbit,
		AcquisitionTime: acq,
	}, nil
}

// ParseAll parses ids in order, skipping malformed ones. The returned errors
// all wrap ErrMalformedBurstIdentifier.
func ParseAll(ids []string) ([]model.BurstProduct, []error) {
	out := make([]model.BurstProduct, 0, len(ids))
	var errs []error
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		bp, err := Parse(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, bp)
	}
	return out, errs
}

// FormatBurstID builds the normalized burst id used by the reference table.
func FormatBurstID(orbit int, burst, swath string) string {
	return fmt.Sprintf("t%03d_%s_%s", orbit, burst, strings.ToLower(swath))
}

// OrbitFromBurstID returns the orbit number embedded in a normalized burst id.
func OrbitFromBurstID(burstID string) (int, error) {
	m := burstIDPattern.FindStringSubmatch(burstID)
	if m == nil {
		return 0, fmt.Errorf("%w: burst id %q", ErrMalformedBurstIdentifier, burstID)
	}
	return strconv.Atoi(m[1])
}
