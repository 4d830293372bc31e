package mtproto

// SendPlain frames payload as a plain message with msg_id msgID and
// writes it through w. Only valid before an auth key has been
// established.
func SendPlain(w *Writer, payload []byte, msgID int64) error {
	return w.Write(PackPlain(payload, msgID))
}

// RecvPlain reads the next frame from r and requires it to be a plain
// message, returning its payload. Used during key exchange, where
// receiving an encrypted message instead is a protocol violation.
func RecvPlain(r *Reader) ([]byte, error) {
	msg, err := r.Next()
	if err != nil {
		return nil, err
	}
	if msg.Plain == nil {
		return nil, ErrUnexpectedEncryptedMessage
	}
	return msg.Plain.Data, nil
}
