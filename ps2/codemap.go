package ps2

import "github.com/Alia5/hid2ps2/hid"

// mapping relates a HID usage code to its set-2 base code and whether it
// needs the 0xE0 prefix.
type mapping struct {
	code     byte
	extended bool
}

// Lookup returns the set-2 base code and extended flag for a HID usage
// code. ok is false for keys with no set-2 equivalent; callers drop the
// event rather than fabricate a code.
func Lookup(usage uint8) (code byte, extended bool, ok bool) {
	m, ok := codeMap[usage]
	return m.code, m.extended, ok
}

// codeMap is the static HID usage to set-2 scan code table. Keys absent
// here (PrintScreen and Pause with their multi-byte sequences, F13+) are
// intentionally unmapped.
var codeMap = map[uint8]mapping{
	// Letters
	hid.KeyA: {code: 0x1C},
	hid.KeyB: {code: 0x32},
	hid.KeyC: {code: 0x21},
	hid.KeyD: {code: 0x23},
	hid.KeyE: {code: 0x24},
	hid.KeyF: {code: 0x2B},
	hid.KeyG: {code: 0x34},
	hid.KeyH: {code: 0x33},
	hid.KeyI: {code: 0x43},
	hid.KeyJ: {code: 0x3B},
	hid.KeyK: {code: 0x42},
	hid.KeyL: {code: 0x4B},
	hid.KeyM: {code: 0x3A},
	hid.KeyN: {code: 0x31},
	hid.KeyO: {code: 0x44},
	hid.KeyP: {code: 0x4D},
	hid.KeyQ: {code: 0x15},
	hid.KeyR: {code: 0x2D},
	hid.KeyS: {code: 0x1B},
	hid.KeyT: {code: 0x2C},
	hid.KeyU: {code: 0x3C},
	hid.KeyV: {code: 0x2A},
	hid.KeyW: {code: 0x1D},
	hid.KeyX: {code: 0x22},
	hid.KeyY: {code: 0x35},
	hid.KeyZ: {code: 0x1A},

	// Number row
	hid.Key1: {code: 0x16},
	hid.Key2: {code: 0x1E},
	hid.Key3: {code: 0x26},
	hid.Key4: {code: 0x25},
	hid.Key5: {code: 0x2E},
	hid.Key6: {code: 0x36},
	hid.Key7: {code: 0x3D},
	hid.Key8: {code: 0x3E},
	hid.Key9: {code: 0x46},
	hid.Key0: {code: 0x45},

	// Specials
	hid.KeyEnter:      {code: 0x5A},
	hid.KeyEscape:     {code: 0x76},
	hid.KeyBackspace:  {code: 0x66},
	hid.KeyTab:        {code: 0x0D},
	hid.KeySpace:      {code: 0x29},
	hid.KeyMinus:      {code: 0x4E},
	hid.KeyEqual:      {code: 0x55},
	hid.KeyLeftBrace:  {code: 0x54},
	hid.KeyRightBrace: {code: 0x5B},
	hid.KeyBackslash:  {code: 0x5D},
	hid.KeySemicolon:  {code: 0x4C},
	hid.KeyApostrophe: {code: 0x52},
	hid.KeyGrave:      {code: 0x0E},
	hid.KeyComma:      {code: 0x41},
	hid.KeyPeriod:     {code: 0x49},
	hid.KeySlash:      {code: 0x4A},
	hid.KeyCapsLock:   {code: 0x58},

	// Function keys
	hid.KeyF1:  {code: 0x05},
	hid.KeyF2:  {code: 0x06},
	hid.KeyF3:  {code: 0x04},
	hid.KeyF4:  {code: 0x0C},
	hid.KeyF5:  {code: 0x03},
	hid.KeyF6:  {code: 0x0B},
	hid.KeyF7:  {code: 0x83},
	hid.KeyF8:  {code: 0x0A},
	hid.KeyF9:  {code: 0x01},
	hid.KeyF10: {code: 0x09},
	hid.KeyF11: {code: 0x78},
	hid.KeyF12: {code: 0x07},

	hid.KeyScrollLock: {code: 0x7E},

	// Navigation block, all extended
	hid.KeyInsert:   {code: 0x70, extended: true},
	hid.KeyHome:     {code: 0x6C, extended: true},
	hid.KeyPageUp:   {code: 0x7D, extended: true},
	hid.KeyDelete:   {code: 0x71, extended: true},
	hid.KeyEnd:      {code: 0x69, extended: true},
	hid.KeyPageDown: {code: 0x7A, extended: true},

	// Arrows, all extended
	hid.KeyRight: {code: 0x74, extended: true},
	hid.KeyLeft:  {code: 0x6B, extended: true},
	hid.KeyDown:  {code: 0x72, extended: true},
	hid.KeyUp:    {code: 0x75, extended: true},

	// Numpad
	hid.KeyNumLock:    {code: 0x77},
	hid.KeyKpSlash:    {code: 0x4A, extended: true},
	hid.KeyKpAsterisk: {code: 0x7C},
	hid.KeyKpMinus:    {code: 0x7B},
	hid.KeyKpPlus:     {code: 0x79},
	hid.KeyKpEnter:    {code: 0x5A, extended: true},
	hid.KeyKp1:        {code: 0x69},
	hid.KeyKp2:        {code: 0x72},
	hid.KeyKp3:        {code: 0x7A},
	hid.KeyKp4:        {code: 0x6B},
	hid.KeyKp5:        {code: 0x73},
	hid.KeyKp6:        {code: 0x74},
	hid.KeyKp7:        {code: 0x6C},
	hid.KeyKp8:        {code: 0x75},
	hid.KeyKp9:        {code: 0x7D},
	hid.KeyKp0:        {code: 0x70},
	hid.KeyKpDot:      {code: 0x71},

	hid.KeyApplication: {code: 0x2F, extended: true},
}

// modifierMapping pairs a modifier bit with its set-2 encoding.
type modifierMapping struct {
	mask     uint8
	code     byte
	extended bool
}

// modifierOrder fixes the sequence modifier transitions are emitted in.
// Left-side keys come first; the right-side Ctrl/Alt and both GUI keys
// carry the extended prefix.
var modifierOrder = []modifierMapping{
	{mask: hid.ModLeftCtrl, code: 0x14},
	{mask: hid.ModLeftShift, code: 0x12},
	{mask: hid.ModLeftAlt, code: 0x11},
	{mask: hid.ModRightShift, code: 0x59},
	{mask: hid.ModRightCtrl, code: 0x14, extended: true},
	{mask: hid.ModRightAlt, code: 0x11, extended: true},
	{mask: hid.ModLeftGUI, code: 0x1F, extended: true},
	{mask: hid.ModRightGUI, code: 0x27, extended: true},
}
