package slam

import "errors"

// ErrDegenerateCovariance reports that an innovation covariance could not
// be inverted. The affected measurement is dropped; the filter state is
// left unchanged and the event loop may continue.
var ErrDegenerateCovariance = errors.New("degenerate innovation covariance")
