//go:build linux

package hook

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// Constants from linux/uinput.h and linux/input-event-codes.h.
// go-evdev is read-only by design and wraps no /dev/uinput device
// creation, so this talks to the kernel directly through
// golang.org/x/sys/unix, the same syscall layer go-evdev itself is
// built on.
const (
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiDevSetup  = 0x405c5503
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502

	evSyn = 0x00
	evKey = 0x01
	synReport = 0
)

// uinputID mirrors struct input_id.
type uinputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// uinputSetup mirrors struct uinput_setup.
type uinputSetup struct {
	ID          uinputID
	Name        [80]byte
	FFEffectsMax uint32
}

// virtualKeyboard is a synthetic /dev/uinput keyboard used to inject
// the key-down/key-up events an Input context asks the host to emit.
type virtualKeyboard struct {
	f *os.File
}

func newVirtualKeyboard() (*virtualKeyboard, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	if err := ioctlInt(f, uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_SET_EVBIT EV_KEY: %w", err)
	}
	if err := ioctlInt(f, uiSetEvBit, evSyn); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_SET_EVBIT EV_SYN: %w", err)
	}
	for _, ev := range vkToEvdev {
		if err := ioctlInt(f, uiSetKeyBit, int(ev)); err != nil {
			f.Close()
			return nil, fmt.Errorf("UI_SET_KEYBIT %d: %w", ev, err)
		}
	}

	setup := uinputSetup{ID: uinputID{BusType: 0x03, Vendor: 0x1, Product: 0x1, Version: 1}}
	copy(setup.Name[:], "keyhac virtual keyboard")
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(uiDevSetup), uintptr(unsafe.Pointer(&setup))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_SETUP: %w", errno)
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(uiDevCreate), 0); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_CREATE: %w", errno)
	}

	return &virtualKeyboard{f: f}, nil
}

func ioctlInt(f *os.File, cmd uintptr, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), cmd, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// inputEvent mirrors the 64-bit struct input_event layout: two 8-byte
// timeval fields followed by type/code/value.
type inputEvent struct {
	Sec, Usec int64
	Type      uint16
	Code      uint16
	Value     int32
}

func (vk *virtualKeyboard) write(evType, code uint16, value int32) error {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint16(buf[16:], evType)
	binary.LittleEndian.PutUint16(buf[18:], code)
	binary.LittleEndian.PutUint32(buf[20:], uint32(value))
	_, err := vk.f.Write(buf)
	return err
}

// SendKey emits a key-down or key-up for code, followed by a SYN_REPORT.
func (vk *virtualKeyboard) SendKey(code evdev.EvCode, down bool) error {
	value := int32(0)
	if down {
		value = 1
	}
	if err := vk.write(evKey, uint16(code), value); err != nil {
		return err
	}
	return vk.write(evSyn, synReport, 0)
}

func (vk *virtualKeyboard) Close() error {
	unix.Syscall(unix.SYS_IOCTL, vk.f.Fd(), uintptr(uiDevDestroy), 0)
	return vk.f.Close()
}
