package variant

import (
	"machinerun.io/drivestats"
	"machinerun.io/drivestats/family"
)

// VendorBlockSize is the smallest Hitachi SCP vendor block decoded.
const VendorBlockSize = 40

// VendorSmart - the Hitachi SCP vendor block of log page 0x37.
type VendorSmart struct {
	HostReads      uint64
	HostWrites     uint64
	NandWrites     uint64
	LifeUsed       uint16
	SpareBlocks    uint32
	PowerOnMinutes uint64
	EraseCount     uint64
}

// UnmarshalBinary decodes a vendor block of at least VendorBlockSize bytes.
func (v *VendorSmart) UnmarshalBinary(b []byte) error {
	if len(b) < VendorBlockSize {
		return drivestats.ErrShortRecord
	}

	v.HostReads = drivestats.U64(b[0x00:0x06], false, 6)
	v.HostWrites = drivestats.U64(b[0x06:0x0c], false, 6)
	v.NandWrites = drivestats.U64(b[0x0c:0x12], false, 6)
	v.LifeUsed = drivestats.U16(b[0x12:0x14], true)
	v.SpareBlocks = drivestats.U32(b[0x14:0x18], true)
	v.PowerOnMinutes = drivestats.U64(b[0x18:0x20], false, 8)
	v.EraseCount = drivestats.U64(b[0x20:0x28], false, 8)

	return nil
}

func decodeVendorSmart(ctx *Context, payload []byte) {
	d := ctx.drive()

	if f := ctx.family(); f != family.SCP {
		ctx.warnf("vendor smart page 0x37 for tla %q is not from a Hitachi SCP drive, not decoded", d.TLAPrefix())
		return
	}

	if len(payload) < drivestats.LogPageHeaderSize {
		ctx.warnf("vendor smart page 0x37 too short: %d bytes", len(payload))
		return
	}

	block := payload[drivestats.LogPageHeaderSize:]
	if declared := int(drivestats.U16(payload[2:4], true)); declared < len(block) {
		block = block[:declared]
	}

	v := VendorSmart{}
	if err := v.UnmarshalBinary(block); err != nil {
		ctx.warnf("vendor smart block is %d bytes, Hitachi SCP needs %d, not decoded", len(block), VendorBlockSize)
		return
	}

	d.Log37.HostWrites.Set(v.HostWrites)
	d.Log37.NandWrites.Set(v.NandWrites)

	ctx.printf("  VENDOR SMART (page 0x%02x subpage 0x%02x)\n", payload[0]&0x3f, payload[1])

	for _, f := range []struct {
		name  string
		value uint64
	}{
		{"Host reads (32 MiB)", v.HostReads},
		{"Host writes (32 MiB)", v.HostWrites},
		{"NAND writes (32 MiB)", v.NandWrites},
		{"Percent life used", uint64(v.LifeUsed)},
		{"Spare blocks", uint64(v.SpareBlocks)},
		{"Power on minutes", v.PowerOnMinutes},
		{"Erase count", v.EraseCount},
	} {
		ctx.printf("  %-43s %d\n", f.name, f.value)
	}
}
