// Package quarantine keeps discarded message payloads on disk so an
// operator can inspect what the persister refused to store. A quarantined
// payload never reaches the record store; the log is diagnostics only.
package quarantine

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"math"
	"os"
	"sync"
	"time"
)

// Reason records why a payload was discarded.
type Reason uint8

const (
	ReasonMalformed   Reason = iota + 1 // payload failed to parse
	ReasonInvalid                       // required field missing or unusable
	ReasonStoreFailed                   // store insert retries exhausted
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonInvalid:
		return "invalid"
	case ReasonStoreFailed:
		return "store-failed"
	default:
		return "unknown"
	}
}

const (
	magicValue = 0x53515142 // "SQYB"
	formatVer  = 1

	// field sizes
	magicLen     = 4
	versionLen   = 1
	reasonLen    = 1
	reservedLen  = 2
	timestampLen = 8
	seqLen       = 8
	payloadLen   = 4

	headerLen = magicLen +
		versionLen +
		reasonLen +
		reservedLen +
		timestampLen +
		payloadLen +
		seqLen

	crcLen = 4
)

// header field offsets (little endian)
const (
	offMagic      = 0
	offVersion    = offMagic + magicLen
	offReason     = offVersion + versionLen
	offReserved   = offReason + reasonLen
	offTimestamp  = offReserved + reservedLen
	offSeq        = offTimestamp + timestampLen
	offPayloadLen = offSeq + seqLen
)

var (
	ErrPartialRecord = errors.New("partial record detected")
	ErrLogClosed     = errors.New("quarantine log closed")
	ErrTooLarge      = errors.New("payload too large")
	ErrCorruptLog    = errors.New("log corruption detected")
)

// Log appends discarded payloads to disk. Append and Close serialize on an
// internal mutex: a shutdown timeout can close the log while the worker is
// still draining.
type Log struct {
	mu     sync.Mutex
	f      *os.File
	seq    uint64
	closed bool
}

// Open opens or creates a quarantine log and truncates any torn tail left
// by a crash mid-append.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	ql := &Log{f: f}

	if err := ql.recover(); err != nil && err != ErrPartialRecord {
		f.Close()
		return nil, err
	}

	// Seek to end for appends
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}

	return ql, nil
}

// Append writes one record: header + payload + CRC32
func (ql *Log) Append(reason Reason, payload []byte) error {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	if ql.closed {
		return ErrLogClosed
	}

	if len(payload) > math.MaxUint32 {
		return ErrTooLarge
	}

	header := recordHeader{
		magic:      magicValue,
		version:    formatVer,
		reason:     reason,
		reserved:   [2]byte{0, 0},
		timestamp:  time.Now().UnixNano(),
		payloadLen: uint32(len(payload)),
		seq:        ql.seq,
	}

	// single buffer allocation for header + payload + CRC
	record := make([]byte, headerLen+len(payload)+crcLen)
	header.encode(record[:headerLen])
	copy(record[headerLen:], payload)

	crc := crc32.ChecksumIEEE(record[:headerLen+len(payload)])
	binary.LittleEndian.PutUint32(record[headerLen+len(payload):], crc)

	if _, err := ql.f.Write(record); err != nil {
		return err
	}

	if err := ql.f.Sync(); err != nil {
		return err
	}

	ql.seq++
	return nil
}

// Close the log
func (ql *Log) Close() error {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	if ql.closed {
		return nil
	}
	ql.closed = true
	return ql.f.Close()
}

// recover scans the log and truncates partial or corrupted records
func (ql *Log) recover() error {
	info, err := ql.f.Stat()
	if err != nil {
		return err
	}

	size := info.Size()
	offset := int64(0)

	var (
		hdrBuf [headerLen]byte
		crcBuf [crcLen]byte
	)
	for offset+headerLen+crcLen <= size {
		if _, err := ql.f.ReadAt(hdrBuf[:], offset); err != nil {
			return ql.truncate(offset)
		}
		hdr, err := decodeHeader(hdrBuf[:])

		if err != nil {
			return ql.truncate(offset)
		}
		recordLen := int64(headerLen) + int64(hdr.payloadLen) + crcLen
		if offset+recordLen > size {
			return ql.truncate(offset)
		}

		payload := make([]byte, hdr.payloadLen)
		if _, err := ql.f.ReadAt(payload, offset+headerLen); err != nil {
			return ql.truncate(offset)
		}
		if _, err := ql.f.ReadAt(crcBuf[:], offset+headerLen+int64(hdr.payloadLen)); err != nil {
			return ql.truncate(offset)
		}
		storedCRC := binary.LittleEndian.Uint32(crcBuf[:])

		// streaming CRC check
		crc := crc32.NewIEEE()
		if _, err := crc.Write(hdrBuf[:]); err != nil {
			return err
		}
		if _, err := crc.Write(payload); err != nil {
			return err
		}
		if crc.Sum32() != storedCRC {
			return ql.truncate(offset)
		}

		offset += recordLen
		ql.seq++
	}

	// A tail shorter than a full header is a torn append as well.
	if offset < size {
		return ql.truncate(offset)
	}

	return nil
}

func (ql *Log) truncate(offset int64) error {
	return ql.f.Truncate(offset)
}
