package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
)

// Digest is the state digest computed at the end of the last Step.
func (w *World) Digest() string { return w.lastDigest }

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteI64(h, &tmp, int64(w.now))
	digestWriteI64(h, &tmp, int64(w.nextIncome))
	w.digestPlayers(h, &tmp)
	w.digestEntities(h, &tmp)

	digestWriteI64(h, &tmp, int64(w.objectiveState.ControllerTeam))
	h.Write([]byte{boolByte(w.objectiveState.Contested)})

	teams := make([]int, 0, len(w.fog))
	for id := range w.fog {
		teams = append(teams, id)
	}
	sort.Ints(teams)
	for _, id := range teams {
		digestWriteI64(h, &tmp, int64(id))
		h.Write(w.fog[id].Cells())
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestPlayers(h hashWriter, tmp *[8]byte) {
	for _, p := range w.sortedPlayers() {
		digestWriteI64(h, tmp, int64(p.ID))
		digestWriteI64(h, tmp, int64(p.Resources))
		digestWriteI64(h, tmp, int64(p.SupplyCap))
		digestWriteI64(h, tmp, int64(p.Supply))
		digestWriteI64(h, tmp, int64(p.WorkerSupply))
		digestWriteI64(h, tmp, int64(p.KillScore))
		writeIntMap(h, tmp, p.Upgrades)
		digestWriteU64(h, tmp, uint64(len(p.RespawnAt)))
		for _, at := range p.RespawnAt {
			digestWriteI64(h, tmp, int64(at))
		}
	}
}

func (w *World) digestEntities(h hashWriter, tmp *[8]byte) {
	for _, e := range w.entities.all() {
		digestWriteU64(h, tmp, uint64(e.ID))
		h.Write([]byte(e.Type))
		digestWriteI64(h, tmp, int64(e.Owner))
		digestWriteF64(h, tmp, e.X)
		digestWriteF64(h, tmp, e.Y)
		digestWriteF64(h, tmp, e.Health)
		digestWriteF64(h, tmp, e.MaxHealth)
		h.Write([]byte{byte(e.State)})
		digestWriteU64(h, tmp, uint64(e.Target))
		digestWriteI64(h, tmp, int64(e.LastAttack))
		if e.Construction != nil {
			digestWriteF64(h, tmp, e.Construction.Progress)
		}
		if e.Siege != nil {
			digestWriteF64(h, tmp, e.Siege.Progress)
			h.Write([]byte{boolByte(e.Siege.Deploy)})
		}
		if e.Producer != nil {
			digestWriteU64(h, tmp, uint64(len(e.Producer.Queue)))
			digestWriteI64(h, tmp, int64(e.Producer.Elapsed))
		}
		digestWriteU64(h, tmp, uint64(e.GarrisonedIn))
	}
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeIntMap(h hashWriter, tmp *[8]byte, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		digestWriteI64(h, tmp, int64(m[k]))
	}
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
