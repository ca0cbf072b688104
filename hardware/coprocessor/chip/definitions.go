// This file is part of Lockstep.
//
// Lockstep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lockstep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lockstep.  If not, see <https://www.gnu.org/licenses/>.

package chip

import (
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/clocks"
)

// Definition of an enhancement chip.
type Definition struct {
	Chip cartridge.Chip

	// tag of the serialization segment
	Tag string

	// zero if the chip is not a core
	Frequency clocks.Rate

	// the register windows. the register file of the chip is the size of the
	// largest window. every window maps to the start of the register file
	Windows []cartridge.Window
}

func systemBanks(lo uint16, hi uint16) []cartridge.Window {
	return []cartridge.Window{
		{BankLo: 0x00, BankHi: 0x3f, AddrLo: lo, AddrHi: hi},
		{BankLo: 0x80, BankHi: 0xbf, AddrLo: lo, AddrHi: hi},
	}
}

// Definitions of each chip in flag order.
var Definitions = [cartridge.NumChips]Definition{
	{
		Chip:    cartridge.ChipBsxSlot,
		Tag:     "BSX ",
		Windows: systemBanks(0x5000, 0x5fff),
	},
	{
		Chip:      cartridge.ChipSuperFX,
		Tag:       "SFX ",
		Frequency: 21477272,
		Windows:   systemBanks(0x3000, 0x32ff),
	},
	{
		Chip:      cartridge.ChipSA1,
		Tag:       "SA1 ",
		Frequency: 21477272,
		Windows:   systemBanks(0x2200, 0x23ff),
	},
	{
		Chip:      cartridge.ChipNECDSP,
		Tag:       "DSP ",
		Frequency: 7600000,
		Windows: []cartridge.Window{
			{BankLo: 0x00, BankHi: 0x1f, AddrLo: 0x6000, AddrHi: 0x7fff},
			{BankLo: 0x80, BankHi: 0x9f, AddrLo: 0x6000, AddrHi: 0x7fff},
		},
	},
	{
		Chip:    cartridge.ChipSRTC,
		Tag:     "SRTC",
		Windows: systemBanks(0x2800, 0x2801),
	},
	{
		Chip:    cartridge.ChipSDD1,
		Tag:     "SDD1",
		Windows: systemBanks(0x4800, 0x4807),
	},
	{
		Chip:    cartridge.ChipSPC7110,
		Tag:     "S711",
		Windows: systemBanks(0x4800, 0x483f),
	},
	{
		Chip:    cartridge.ChipSPC7110RTC,
		Tag:     "S7RT",
		Windows: systemBanks(0x4840, 0x4842),
	},
	{
		Chip:      cartridge.ChipCX4,
		Tag:       "CX4 ",
		Frequency: 20000000,
		Windows:   systemBanks(0x6000, 0x7fff),
	},
	{
		Chip:    cartridge.ChipOBC1,
		Tag:     "OBC1",
		Windows: systemBanks(0x6000, 0x7fff),
	},
	{
		Chip:      cartridge.ChipST0018,
		Tag:       "ST18",
		Frequency: 21477272,
		Windows:   systemBanks(0x3800, 0x38ff),
	},
	{
		Chip:      cartridge.ChipMSU1,
		Tag:       "MSU1",
		Frequency: 44100,
		Windows:   systemBanks(0x2000, 0x2007),
	},
	{
		Chip:      cartridge.ChipSerial,
		Tag:       "SERL",
		Frequency: 230400,
	},
}
