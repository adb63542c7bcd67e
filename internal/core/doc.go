// Package core holds the person dataset logic.
//
// It is independent of the HTTP layer and of any particular storage
// backend: a [Service] is built over a storage.Store and the process
// configuration, and can be driven from web handlers or tests alike.
//
// # Dataset
//
// The dataset is one CSV object with the header name,age,height followed by
// one row per accepted person in submission order. [ParseDataset] and
// [Dataset.Encode] convert between that text and []Person; duplicates are
// allowed and rows are never modified or removed.
//
// # Appending
//
// [Service.Append] validates the input against the configured [Limits]
// before touching storage, then runs a read, append, write cycle. In the
// default conditional mode the write carries the version that was read, so
// a concurrent append causes a conflict, a fresh read and another attempt:
//
//	res, err := svc.Append(ctx, in)
//	switch {
//	case errors.As(err, &verrs):     // 422, nothing stored
//	case errors.Is(err, ErrConflict): // retries exhausted
//	}
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category carries a code for support reference (VAL, REQ, STO, APP, CSV,
// RATE, ERR000).
package core
