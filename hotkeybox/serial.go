package hotkeybox

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial.v1"
)

var ErrNoSerialPortFound = errors.New("didn't find any available serial port")
var ErrClosedPort = errors.New("serial port is closed")

// DefaultSerialConfig matches the firmware's Serial.begin(9600).
var DefaultSerialConfig = &serial.Mode{
	BaudRate: 9600,
	Parity:   serial.NoParity,
	DataBits: 8,
	StopBits: serial.OneStopBit,
}

var DefaultTimeout = time.Second

// SerialConnection buffers a serial port behind a reader and a writer
// routine, so the box can poll for bytes without ever blocking.
type SerialConnection struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	port   io.ReadWriteCloser
	path   string
	config *serial.Mode

	mu    sync.Mutex
	state State

	rdChan    chan byte
	wrChan    chan []byte
	errChan   chan error
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewSerial(port io.ReadWriteCloser, config *serial.Mode, name string) *SerialConnection {
	return &SerialConnection{
		port:      port,
		path:      name,
		config:    config,
		state:     Connected,
		rdChan:    make(chan byte, 4*FrameMax),
		wrChan:    make(chan []byte),
		errChan:   make(chan error),
		closeChan: make(chan struct{}),

		ReadTimeout:  DefaultTimeout,
		WriteTimeout: DefaultTimeout,
	}
}

// Start begins the two routines responsible
// for reading and writing on serial port.
func (sc *SerialConnection) Start() {
	sc.wg.Add(2)
	go func() {
		sc.readRoutine()
		sc.wg.Done()
	}()
	go func() {
		sc.writeRoutine()
		sc.wg.Done()
	}()
}

// TryReadByte returns the next received byte, if any.
func (sc *SerialConnection) TryReadByte() (byte, bool) {
	select {
	case b := <-sc.rdChan:
		return b, true
	default:
		return 0, false
	}
}

// ReadByte waits up to sc.ReadTimeout for the next byte,
// it also checks if connection is closed and returns error accordingly.
func (sc *SerialConnection) ReadByte() (b byte, err error) {
	select {
	case b = <-sc.rdChan:
	case err = <-sc.errChan:
	case <-sc.closeChan:
		err = ErrClosedPort
	case <-time.After(sc.ReadTimeout):
		err = fmt.Errorf("read timeout (%s)", sc.ReadTimeout)
	}
	return b, err
}

// Write pushes b to sc.wrChan, or returns an error
// after sc.WriteTimeout, or if connection is closed.
func (sc *SerialConnection) Write(b []byte) (err error) {
	select {
	case sc.wrChan <- b:
	case <-sc.closeChan:
		err = ErrClosedPort
	case <-time.After(sc.WriteTimeout):
		err = fmt.Errorf("write timeout (%s)", sc.WriteTimeout)
		sc.setState(WriteError)
	}
	return err
}

// Close notifies read/write routines to stop, then waits
// for them to return, it then actually closes serial port.
func (sc *SerialConnection) Close() (err error) {
	sc.closeOnce.Do(func() {
		close(sc.closeChan)
		// unblocks a pending port.Read
		err = sc.port.Close()
		sc.wg.Wait()
		sc.setState(Disconnected)
	})
	return err
}

// Path returns device name / path of serial port.
func (sc *SerialConnection) Path() string {
	return sc.path
}

func (sc *SerialConnection) State() State {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.state
}

func (sc *SerialConnection) setState(st State) {
	sc.mu.Lock()
	sc.state = st
	sc.mu.Unlock()
}

func (sc *SerialConnection) readRoutine() {
	b := make([]byte, 32)
	for {
		i, err := sc.port.Read(b)
		for _, c := range b[:i] {
			select {
			case sc.rdChan <- c:
			case <-sc.closeChan:
				return
			}
		}
		if err == nil {
			continue
		}

		select {
		case <-sc.closeChan:
			return
		default:
		}
		sc.setState(ReadError)
		select {
		case sc.errChan <- err:
		case <-sc.closeChan:
			return
		}
		time.Sleep(time.Millisecond * 50)
	}
}

func (sc *SerialConnection) writeRoutine() {
	var b []byte
	for {
		select {
		case b = <-sc.wrChan:
		case <-sc.closeChan:
			return
		}
		_, err := sc.port.Write(b)
		if err != nil {
			log.Println("in sc.writeRoutine:", err)
			sc.setState(WriteError)
		}
	}
}

// Ports lists the serial ports of the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// FindSerial tries to connect to first available serial port answering
// like a hotkey box. If config is nil, DefaultSerialConfig is used.
func FindSerial(config *serial.Mode) (*SerialConnection, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultSerialConfig
	}
	var port serial.Port
	for _, v := range ports {
		port, err = serial.Open(v, config)
		if err != nil {
			continue
		}
		log.Printf("trying \"%s\"...", v)
		conn := NewSerial(port, config, v)
		conn.ReadTimeout = time.Millisecond * 250
		conn.WriteTimeout = time.Millisecond * 250
		conn.Start()
		t, err := NewClient(conn).TestConnection()
		if err == nil {
			log.Printf("connected to \"%s\" in %s", v, t)
			conn.ReadTimeout = DefaultTimeout
			conn.WriteTimeout = DefaultTimeout
			return conn, nil
		}
		conn.Close()
	}
	if err == nil {
		return nil, ErrNoSerialPortFound
	}
	return nil, err
}

// OpenPortName opens the serial port name. If config is nil,
// DefaultSerialConfig is used.
func OpenPortName(name string, config *serial.Mode) (port serial.Port, _ *serial.Mode, err error) {
	if config == nil {
		config = DefaultSerialConfig
	}
	port, err = serial.Open(name, config)
	return port, config, err
}
