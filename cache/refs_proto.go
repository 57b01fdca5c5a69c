package cache

import "github.com/gogo/protobuf/proto"

// Refs is the stored value of a RefIndex entry.
type Refs struct {
	Ids []int64 `protobuf:"varint,1,rep,packed,name=ids" json:"ids,omitempty"`
}

func (m *Refs) Reset()         { *m = Refs{} }
func (m *Refs) String() string { return proto.CompactTextString(m) }
func (*Refs) ProtoMessage()    {}
