package variant

import (
	"machinerun.io/drivestats"
)

const (
	smartRevisionSize  = 2
	smartAttrSize      = 12
	smartMaxAttributes = 30
)

var smartAttrNames = map[uint8]string{
	1:   "Raw_Read_Error_Rate",
	5:   "Reallocated_Sector_Ct",
	9:   "Power_On_Hours",
	12:  "Power_Cycle_Count",
	170: "Available_Reservd_Space",
	171: "Program_Fail_Count",
	172: "Erase_Fail_Count",
	173: "Wear_Leveling_Count",
	174: "Unexpect_Power_Loss_Ct",
	177: "Wear_Range_Delta",
	181: "Program_Fail_Cnt_Total",
	182: "Erase_Fail_Count_Total",
	183: "Runtime_Bad_Block",
	184: "End-to-End_Error",
	187: "Reported_Uncorrect",
	188: "Command_Timeout",
	194: "Temperature_Celsius",
	195: "Hardware_ECC_Recovered",
	196: "Reallocated_Event_Count",
	197: "Current_Pending_Sector",
	198: "Offline_Uncorrectable",
	199: "UDMA_CRC_Error_Count",
	202: "Percent_Lifetime_Remain",
	231: "SSD_Life_Left",
	232: "Available_Reservd_Space",
	233: "Media_Wearout_Indicator",
	241: "Total_LBAs_Written",
	242: "Total_LBAs_Read",
	247: "Host_Program_Page_Count",
	248: "Bckgnd_Program_Page_Cnt",
}

// SmartAttr - one entry of the ATA style attribute table.
type SmartAttr struct {
	ID      uint8
	Flags   uint16
	Current uint8
	Worst   uint8
	Raw     uint64
}

// Name returns the attribute name, "Unknown_Attribute" for unlisted ids.
func (a SmartAttr) Name() string {
	if name, ok := smartAttrNames[a.ID]; ok {
		return name
	}

	return "Unknown_Attribute"
}

// ParseSmartAttrs decodes the attribute table revision and its non-empty
// entries. Entries cut short by the end of payload are dropped.
func ParseSmartAttrs(payload []byte) (revision uint16, attrs []SmartAttr) {
	if len(payload) < smartRevisionSize {
		return 0, nil
	}

	revision = drivestats.U16(payload, false)

	for i := 0; i < smartMaxAttributes; i++ {
		off := smartRevisionSize + i*smartAttrSize
		if off+smartAttrSize > len(payload) {
			break
		}

		b := payload[off : off+smartAttrSize]
		if b[0] == 0 {
			continue
		}

		attrs = append(attrs, SmartAttr{
			ID:      b[0],
			Flags:   drivestats.U16(b[1:3], false),
			Current: b[3],
			Worst:   b[4],
			Raw:     drivestats.U64(b[5:11], false, 6),
		})
	}

	return revision, attrs
}

func decodeSmartAttr(ctx *Context, payload []byte) {
	if len(payload) < smartRevisionSize {
		ctx.warnf("smart attribute payload too short: %d bytes", len(payload))
		return
	}

	revision, attrs := ParseSmartAttrs(payload)

	ctx.printf("  revision=%d\n", revision)

	for _, a := range attrs {
		ctx.printf("  %3d %-24s flags=0x%04x value=%d worst=%d raw=%d\n",
			a.ID, a.Name(), a.Flags, a.Current, a.Worst, a.Raw)
	}
}
