package quarantine

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"time"
)

// Entry is one quarantined payload read back from the log.
type Entry struct {
	Seq           uint64
	Reason        Reason
	QuarantinedAt time.Time
	Payload       []byte
}

// Reader reads a snapshot of the log at open time.
// Appends after creation are not visible.
type Reader struct {
	f      *os.File
	offset int64
	size   int64
}

func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, size: info.Size(), offset: 0}, nil
}

func (r *Reader) Next() (Entry, error) {
	if r.offset >= r.size {
		return Entry{}, io.EOF
	}

	var headerBuf [headerLen]byte
	if _, err := r.f.ReadAt(headerBuf[:], r.offset); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, err
	}

	hdr, err := decodeHeader(headerBuf[:])
	if err != nil {
		return Entry{}, err
	}

	recordLen := int64(headerLen) + int64(hdr.payloadLen) + crcLen
	if r.offset+recordLen > r.size {
		return Entry{}, ErrPartialRecord
	}

	payload := make([]byte, hdr.payloadLen)
	if _, err := r.f.ReadAt(payload, r.offset+headerLen); err != nil {
		return Entry{}, err
	}

	var crcBuf [crcLen]byte
	if _, err := r.f.ReadAt(crcBuf[:], r.offset+headerLen+int64(hdr.payloadLen)); err != nil {
		return Entry{}, err
	}
	storedCRC := binary.LittleEndian.Uint32(crcBuf[:])

	crc := crc32.NewIEEE()
	if _, err := crc.Write(headerBuf[:]); err != nil {
		return Entry{}, err
	}
	if _, err := crc.Write(payload); err != nil {
		return Entry{}, err
	}

	if crc.Sum32() != storedCRC {
		return Entry{}, ErrCorruptLog
	}

	r.offset += recordLen

	return Entry{
		Seq:           hdr.seq,
		Reason:        hdr.reason,
		QuarantinedAt: time.Unix(0, hdr.timestamp),
		Payload:       payload,
	}, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}
