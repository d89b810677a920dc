/*
Package streaming delivers finished documents to HTTP clients without letting
a stalled client hold a conversion slot.

[Send] copies a reader to the response in chunks, flushing after each one.
Every chunk must reach the connection within Config.WriteTimeout, and the
copy stops as soon as the request context ends.

	n, err := streaming.Send(r.Context(), w, bytes.NewReader(pdf), streaming.DefaultConfig())
	if errors.Is(err, streaming.ErrWriteTimeout) {
	    // client stopped reading
	}
*/
package streaming
