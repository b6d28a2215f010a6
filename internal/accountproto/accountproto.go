// Package accountproto defines the wire shapes shared by the auth and
// world daemons' login/admission handshake (spec.md §4.4 step 1, §6
// "the body payload is an opaque serialized message blob... any chosen
// serialization [must be] self-delimiting within body_len"). Both
// daemons decode the same LoginRequest; only the response differs
// (authd answers with a realm list, worldd with an admission verdict).
package accountproto

import (
	"encoding/binary"
	"errors"
)

// AuthVerdict mirrors the client-visible admission outcomes (spec.md §7
// "the client receives either an AuthVerdict message for admission (OK
// / WAIT_QUEUE / SESSION_EXPIRED) or a socket close").
type AuthVerdict uint8

const (
	VerdictOK AuthVerdict = iota
	VerdictWaitQueue
	VerdictSessionExpired
	VerdictBanned
)

// LoginRequest is the client's opening application packet, sent to
// either daemon (spec.md §1: auth's session contract is in scope,
// its realm-selection business logic is not; worldd independently
// re-validates the same fields against its own ban-list snapshot since
// the two daemons are separate processes with no shared memory).
type LoginRequest struct {
	Account      string
	CombatPower  int32
	IsGM         bool
	IsTrainee    bool
	PriorSessionID uint32
	SelectedKind uint8 // mirrors theater.MapKind without importing it here
}

// EncodeLoginRequest serializes a LoginRequest.
func EncodeLoginRequest(r LoginRequest) []byte {
	acc := []byte(r.Account)
	if len(acc) > 255 {
		acc = acc[:255]
	}
	buf := make([]byte, 1+len(acc)+4+1+4+1)
	i := 0
	buf[i] = byte(len(acc))
	i++
	i += copy(buf[i:], acc)
	binary.BigEndian.PutUint32(buf[i:], uint32(r.CombatPower))
	i += 4
	var flags byte
	if r.IsGM {
		flags |= 1
	}
	if r.IsTrainee {
		flags |= 2
	}
	buf[i] = flags
	i++
	binary.BigEndian.PutUint32(buf[i:], r.PriorSessionID)
	i += 4
	buf[i] = r.SelectedKind
	return buf
}

// DecodeLoginRequest parses a LoginRequest, rejecting a body too short
// to hold its own declared account-name length.
func DecodeLoginRequest(body []byte) (LoginRequest, error) {
	if len(body) < 1 {
		return LoginRequest{}, errors.New("accountproto: empty login body")
	}
	n := int(body[0])
	if len(body) < 1+n+4+1+4+1 {
		return LoginRequest{}, errors.New("accountproto: truncated login body")
	}
	i := 1
	account := string(body[i : i+n])
	i += n
	combatPower := int32(binary.BigEndian.Uint32(body[i:]))
	i += 4
	flags := body[i]
	i++
	prior := binary.BigEndian.Uint32(body[i:])
	i += 4
	kind := body[i]
	return LoginRequest{
		Account:      account,
		CombatPower:  combatPower,
		IsGM:         flags&1 != 0,
		IsTrainee:    flags&2 != 0,
		PriorSessionID: prior,
		SelectedKind: kind,
	}, nil
}

// EncodeAuthVerdict serializes the admission outcome plus the queue
// position (only meaningful for VerdictWaitQueue).
func EncodeAuthVerdict(v AuthVerdict, queuePosition int32) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(v)
	binary.BigEndian.PutUint32(buf[1:], uint32(queuePosition))
	return buf
}

// DecodeAuthVerdict is the client-side counterpart; kept here so both
// ends of the handshake share one definition of the wire shape.
func DecodeAuthVerdict(body []byte) (v AuthVerdict, queuePosition int32, ok bool) {
	if len(body) < 5 {
		return 0, 0, false
	}
	return AuthVerdict(body[0]), int32(binary.BigEndian.Uint32(body[1:])), true
}

// TheaterInfo is sent alongside VerdictOK, naming the map the player
// spawned into (spec.md §8 scenario 1: "TheaterInfo with training-ground
// map id").
type TheaterInfo struct {
	MapID int32
	Kind  uint8
}

func EncodeTheaterInfo(t TheaterInfo) []byte {
	buf := make([]byte, 5)
	binary.BigEndian.PutUint32(buf, uint32(t.MapID))
	buf[4] = t.Kind
	return buf
}

// RealmEntry is one realm row the auth daemon lists after a successful
// login (spec.md §1 "the auth daemon's realm-selection business logic
// beyond its session contract" is out of scope — authd only lists what
// it knows, it does not pick one for the client).
type RealmEntry struct {
	RealmID int32
	Name    string
	Host    string
	Port    int32
}

// EncodeRealmList serializes a realm list, truncating any entry's name
// or host past 255 bytes the same way EncodeLoginRequest truncates an
// account name.
func EncodeRealmList(realms []RealmEntry) []byte {
	size := 2
	trimmed := make([]RealmEntry, len(realms))
	for i, r := range realms {
		name, host := []byte(r.Name), []byte(r.Host)
		if len(name) > 255 {
			name = name[:255]
		}
		if len(host) > 255 {
			host = host[:255]
		}
		r.Name, r.Host = string(name), string(host)
		trimmed[i] = r
		size += 4 + 1 + len(name) + 1 + len(host) + 4
	}
	buf := make([]byte, size)
	binary.BigEndian.PutUint16(buf, uint16(len(trimmed)))
	i := 2
	for _, r := range trimmed {
		binary.BigEndian.PutUint32(buf[i:], uint32(r.RealmID))
		i += 4
		buf[i] = byte(len(r.Name))
		i++
		i += copy(buf[i:], r.Name)
		buf[i] = byte(len(r.Host))
		i++
		i += copy(buf[i:], r.Host)
		binary.BigEndian.PutUint32(buf[i:], uint32(r.Port))
		i += 4
	}
	return buf
}

// DecodeRealmList is the client-side counterpart.
func DecodeRealmList(body []byte) ([]RealmEntry, bool) {
	if len(body) < 2 {
		return nil, false
	}
	count := binary.BigEndian.Uint16(body)
	i := 2
	out := make([]RealmEntry, 0, count)
	for n := 0; n < int(count); n++ {
		if i+4+1 > len(body) {
			return nil, false
		}
		var r RealmEntry
		r.RealmID = int32(binary.BigEndian.Uint32(body[i:]))
		i += 4
		nameLen := int(body[i])
		i++
		if i+nameLen > len(body) {
			return nil, false
		}
		r.Name = string(body[i : i+nameLen])
		i += nameLen
		if i+1 > len(body) {
			return nil, false
		}
		hostLen := int(body[i])
		i++
		if i+hostLen+4 > len(body) {
			return nil, false
		}
		r.Host = string(body[i : i+hostLen])
		i += hostLen
		r.Port = int32(binary.BigEndian.Uint32(body[i:]))
		i += 4
		out = append(out, r)
	}
	return out, true
}

// ObjectDeltaKind mirrors spatial.Delta at the wire boundary (spec.md
// §4.7: "CREATE... OUT_OF_RANGE... VALUES_UPDATE... coalesced into one
// UPDATE_OBJECT packet per player per tick").
type ObjectDeltaKind uint8

const (
	DeltaCreate ObjectDeltaKind = iota
	DeltaOutOfRange
	DeltaValuesUpdate
)

type ObjectDelta struct {
	GUID uint32
	Kind ObjectDeltaKind
}

// EncodeObjectDeltas serializes one tick's coalesced UPDATE_OBJECT
// packet body for a single viewer.
func EncodeObjectDeltas(deltas []ObjectDelta) []byte {
	buf := make([]byte, 2+5*len(deltas))
	binary.BigEndian.PutUint16(buf, uint16(len(deltas)))
	i := 2
	for _, d := range deltas {
		binary.BigEndian.PutUint32(buf[i:], d.GUID)
		i += 4
		buf[i] = byte(d.Kind)
		i++
	}
	return buf
}
