/*
Package databook archives typed objects as trees of named, tagged values.

We implement:

1. Nodes, in-memory trees mapping field names to tagged values. A value is
either one of the fixed-width primitives, a string, or a child node.

2. Stores, a writing store that builds a node field by field and a loading
store that reads fields back, checking names and kinds.

3. Notebooks, a single façade over both stores. A Notebook is created in
one mode and reports ErrWrongMode when used in the other.

4. Shapes, compile-time dispatch over what an object knows how to do.
Primitives are stored directly. Asymmetric types implement Store and a
value-returning Load. Symmetric types implement one Serialize method that
both writes and reads.

5. Shelves, which keep named trees in Bolt (or in memory) as framed records.

# Technical Details

**Field errors.**
Every failed field operation returns a *FieldError naming the dotted path
from the root, the mode and the kinds involved. The sentinels
ErrKeyNotFound, ErrTypeMismatch and ErrWrongMode are matched with errors.Is.

**Overwrites.**
Storing the same name twice replaces the earlier value, the last write wins.

## Binary encoding

**Node**: msgpack map from field name to a two-element array of kind
(uint8) and payload. Names are written in sorted order, so equal trees
encode to equal bytes. Child nodes nest as maps, up to 512 levels.

**Record** (one per shelved tree):
1. Flags (uvarint). Bits 0-3 hold the format version, bit 4 marks a
snappy-compressed payload.
2. Payload size (uvarint).
3. xxhash64 of the stored payload (fixed 8 bytes, big endian).
4. Payload: the node encoding, possibly compressed.
*/
package databook
