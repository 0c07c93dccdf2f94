package fontindex

import (
	"bytes"

	"github.com/RoaringBitmap/roaring"
	"go.etcd.io/bbolt"

	"github.com/fontlaborg/typg/internal/typgerr"
)

func loadBitmap(bucket *bbolt.Bucket, key []byte) (*roaring.Bitmap, error) {
	bm := roaring.NewBitmap()
	data := bucket.Get(key)
	if data == nil {
		return bm, nil
	}
	if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "reading inverted bitmap")
	}
	return bm, nil
}

func storeBitmap(bucket *bbolt.Bucket, key []byte, bm *roaring.Bitmap) error {
	if bm.IsEmpty() {
		return bucket.Delete(key)
	}
	data, err := bm.ToBytes()
	if err != nil {
		return typgerr.Wrap(typgerr.IndexIO, err, "serializing inverted bitmap")
	}
	return bucket.Put(key, data)
}

// addToBitmap loads the bitmap at key, adds id, and stores it back.
func addToBitmap(bucket *bbolt.Bucket, key []byte, id FontID) error {
	if FontID(uint32(id)) != id {
		return typgerr.New(typgerr.IndexIO, "font id %d exceeds 32-bit bitmap range", id)
	}
	bm, err := loadBitmap(bucket, key)
	if err != nil {
		return err
	}
	bm.Add(uint32(id))
	return storeBitmap(bucket, key, bm)
}

// removeFromBitmap loads the bitmap at key, removes id, and stores it
// back (deleting the key entirely if the bitmap becomes empty).
func removeFromBitmap(bucket *bbolt.Bucket, key []byte, id FontID) error {
	bm, err := loadBitmap(bucket, key)
	if err != nil {
		return err
	}
	bm.Remove(uint32(id))
	return storeBitmap(bucket, key, bm)
}
