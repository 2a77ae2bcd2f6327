package databook

type ShelfStats struct {
	Trees      int
	Compressed int

	DataSize  int64
	DataAlloc int64
}

// Stats reports the number of shelved trees and the space they occupy.
func (sh *Shelf) Stats() (ShelfStats, error) {
	var result ShelfStats
	err := sh.read(func(b storageBucket) error {
		bs := b.Stats()
		result = ShelfStats{
			Trees:     bs.KeyN,
			DataSize:  bs.LeafInuse,
			DataAlloc: bs.TotalAlloc(),
		}
		return b.ForEach(func(_, v []byte) error {
			flags, _, err := splitRecord(v)
			if err == nil && flags.compressed() {
				result.Compressed++
			}
			return nil
		})
	})
	return result, err
}
