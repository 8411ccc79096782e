package driver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

const (
	oidSysDescr    = ".1.3.6.1.2.1.1.1.0"
	oidSysObjectID = ".1.3.6.1.2.1.1.2.0"
	oidSysUpTime   = ".1.3.6.1.2.1.1.3.0"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"

	oidIfTable     = ".1.3.6.1.2.1.2.2.1"
	oidIfDescr     = ".1.3.6.1.2.1.2.2.1.2"
	oidIfXTable    = ".1.3.6.1.2.1.31.1.1.1"
	oidIfName      = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIPAddrTable = ".1.3.6.1.2.1.4.20.1"

	oidEntPhysicalSerialNum = ".1.3.6.1.2.1.47.1.1.1.1.11"
	oidEntPhysicalModelName = ".1.3.6.1.2.1.47.1.1.1.1.13"
)

// ifTable, ifXTable and ipAddrTable columns
const (
	colIfDescr       = 2
	colIfType        = 3
	colIfMtu         = 4
	colIfSpeed       = 5
	colIfPhysAddress = 6
	colIfAdminStatus = 7
	colIfOperStatus  = 8

	colIfName      = 1
	colIfHighSpeed = 15
	colIfAlias     = 18

	colIPAdEntIfIndex = 2
	colIPAdEntNetMask = 3

	statusUp = 1
)

var errStopWalk = errors.New("stop walk")

// snmpClient is the subset of gosnmp used by the driver
type snmpClient interface {
	Connect() error
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	BulkWalk(rootOid string, walkFn gosnmp.WalkFunc) error
	Close() error
}

type goSNMPClient struct {
	*gosnmp.GoSNMP
}

func (c goSNMPClient) Close() error {
	if c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}

// newGoSNMPClient selects SNMPv3 authNoPriv when a username is set,
// otherwise SNMPv2c with the password as community.
func newGoSNMPClient(ctx context.Context, t Target, opts Options) snmpClient {
	port := t.Port
	if port == 0 {
		port = opts.SNMPPort
	}

	g := &gosnmp.GoSNMP{
		Context: ctx,
		Target:  t.Host,
		Port:    uint16(port),
		Timeout: opts.ConnectTimeout,
		Retries: opts.SNMPRetries,
		MaxOids: gosnmp.MaxOids,
	}

	if t.Username != "" {
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		g.MsgFlags = gosnmp.AuthNoPriv
		g.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 t.Username,
			AuthenticationProtocol:   gosnmp.SHA,
			AuthenticationPassphrase: t.Password,
		}
	} else {
		g.Version = gosnmp.Version2c
		g.Community = t.Password
	}

	return goSNMPClient{g}
}

// SNMP collects facts over SNMP MIB-II and ENTITY-MIB
type SNMP struct {
	opts      Options
	newClient func(ctx context.Context, t Target, opts Options) snmpClient

	client   snmpClient
	target   Target
	platform string
	profile  snmpProfile
}

// NewSNMP creates an unconnected SNMP driver
func NewSNMP(opts Options) *SNMP {
	return &SNMP{
		opts:      opts.withDefaults(),
		newClient: newGoSNMPClient,
	}
}

// Name returns the driver identifier
func (s *SNMP) Name() string {
	return "snmp"
}

// Platform returns the facts platform selected at Connect
func (s *SNMP) Platform() string {
	return s.platform
}

// Connect opens the UDP session and probes sysName.0
func (s *SNMP) Connect(ctx context.Context, t Target) error {
	if err := s.Close(); err != nil {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: err}
	}
	if t.Host == "" {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: errors.New("empty host")}
	}

	client := s.newClient(ctx, t, s.opts)
	if err := client.Connect(); err != nil {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: err}
	}

	pkt, err := client.Get([]string{oidSysName})
	if err == nil {
		err = packetError(pkt)
	}
	if err != nil {
		_ = client.Close()
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: fmt.Errorf("probe sysName: %w", err)}
	}

	s.client = client
	s.target = t
	s.platform = PlatformFor(t.DeviceType)
	s.profile = profileFor(s.platform)

	return nil
}

// Facts reads the system group and the chassis entity
func (s *SNMP) Facts(ctx context.Context) (Facts, error) {
	if err := s.ready(ctx); err != nil {
		return Facts{}, s.collectionErr("facts", err)
	}

	pkt, err := s.client.Get([]string{oidSysDescr, oidSysObjectID, oidSysUpTime, oidSysName})
	if err == nil {
		err = packetError(pkt)
	}
	if err != nil {
		return Facts{}, s.collectionErr("facts", err)
	}

	var descr, objectID, sysName string
	var facts Facts

	for _, v := range pkt.Variables {
		if v.Type == gosnmp.NoSuchObject || v.Type == gosnmp.NoSuchInstance {
			continue
		}

		switch normalizeOID(v.Name) {
		case oidSysDescr:
			descr = pduString(v)
		case oidSysObjectID:
			objectID = pduString(v)
		case oidSysUpTime:
			// TimeTicks are hundredths of a second
			facts.Uptime = time.Duration(pduInt(v)) * 10 * time.Millisecond
		case oidSysName:
			sysName = pduString(v)
		}
	}

	if sysName != "" {
		host, _, dotted := strings.Cut(sysName, ".")
		facts.Hostname = host
		if dotted {
			facts.FQDN = sysName
		}
	}

	facts.Vendor = s.profile.vendor
	if facts.Vendor == "" {
		facts.Vendor = vendorFromObjectID(objectID)
	}
	facts.OSVersion = s.profile.osVersion(descr)

	// ENTITY-MIB is optional on many agents
	facts.Serial = s.firstString(oidEntPhysicalSerialNum)
	facts.Model = s.firstString(oidEntPhysicalModelName)

	facts.Interfaces = s.walkStrings(oidIfName)
	if len(facts.Interfaces) == 0 {
		facts.Interfaces = s.walkStrings(oidIfDescr)
	}

	return facts, nil
}

type ifRow struct {
	index     int
	descr     string
	name      string
	alias     string
	ifType    int
	mtu       int
	speedBps  int
	highSpeed int
	mac       string
	admin     int
	oper      int
	addrs     []string
}

// Interfaces walks ifTable, ifXTable and ipAddrTable, ordered by ifIndex
func (s *SNMP) Interfaces(ctx context.Context) ([]InterfaceFacts, error) {
	if err := s.ready(ctx); err != nil {
		return nil, s.collectionErr("interfaces", err)
	}

	rows := make(map[int]*ifRow)
	row := func(idx int) *ifRow {
		r, ok := rows[idx]
		if !ok {
			r = &ifRow{index: idx}
			rows[idx] = r
		}
		return r
	}

	err := s.client.BulkWalk(oidIfTable, func(pdu gosnmp.SnmpPDU) error {
		col, index, ok := splitColumn(oidIfTable, pdu.Name)
		if !ok {
			return nil
		}
		idx, err := strconv.Atoi(index)
		if err != nil {
			return nil
		}

		r := row(idx)
		switch col {
		case colIfDescr:
			r.descr = pduString(pdu)
		case colIfType:
			r.ifType = pduInt(pdu)
		case colIfMtu:
			r.mtu = pduInt(pdu)
		case colIfSpeed:
			r.speedBps = pduInt(pdu)
		case colIfPhysAddress:
			r.mac = pduMAC(pdu)
		case colIfAdminStatus:
			r.admin = pduInt(pdu)
		case colIfOperStatus:
			r.oper = pduInt(pdu)
		}
		return nil
	})
	if err != nil {
		return nil, s.collectionErr("interfaces", fmt.Errorf("walk ifTable: %w", err))
	}

	// ifXTable is absent on SNMPv1-era agents
	_ = s.client.BulkWalk(oidIfXTable, func(pdu gosnmp.SnmpPDU) error {
		col, index, ok := splitColumn(oidIfXTable, pdu.Name)
		if !ok {
			return nil
		}
		idx, err := strconv.Atoi(index)
		if err != nil {
			return nil
		}
		r, known := rows[idx]
		if !known {
			return nil
		}

		switch col {
		case colIfName:
			r.name = pduString(pdu)
		case colIfHighSpeed:
			r.highSpeed = pduInt(pdu)
		case colIfAlias:
			r.alias = pduString(pdu)
		}
		return nil
	})

	masks := make(map[string]string)
	owners := make(map[string]int)
	_ = s.client.BulkWalk(oidIPAddrTable, func(pdu gosnmp.SnmpPDU) error {
		col, ip, ok := splitColumn(oidIPAddrTable, pdu.Name)
		if !ok {
			return nil
		}
		switch col {
		case colIPAdEntIfIndex:
			owners[ip] = pduInt(pdu)
		case colIPAdEntNetMask:
			masks[ip] = pduString(pdu)
		}
		return nil
	})

	ips := make([]string, 0, len(owners))
	for ip := range owners {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	for _, ip := range ips {
		if r, ok := rows[owners[ip]]; ok {
			r.addrs = append(r.addrs, withPrefix(ip, masks[ip]))
		}
	}

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]InterfaceFacts, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, rows[idx].facts())
	}

	return out, nil
}

func (r *ifRow) facts() InterfaceFacts {
	name := r.name
	if name == "" {
		name = r.descr
	}

	speed := r.speedBps / 1000
	if r.highSpeed > 0 {
		speed = r.highSpeed * 1000
	}

	return InterfaceFacts{
		Name:        name,
		Kind:        kindFromIfType(r.ifType),
		Description: r.alias,
		Enabled:     r.admin == statusUp,
		Up:          r.oper == statusUp,
		MACAddress:  r.mac,
		MTU:         r.mtu,
		SpeedKbps:   speed,
		IPAddresses: r.addrs,
	}
}

// Config is not retrievable over SNMP
func (s *SNMP) Config(ctx context.Context) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", s.collectionErr("config", err)
	}
	return "", s.collectionErr("config", ErrUnsupportedOperation)
}

// Close releases the UDP socket
func (s *SNMP) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *SNMP) ready(ctx context.Context) error {
	if s.client == nil {
		return ErrNotConnected
	}
	return ctx.Err()
}

func (s *SNMP) collectionErr(op string, err error) error {
	return &CollectionError{Driver: s.Name(), Host: s.target.Host, Op: op, Err: err}
}

func (s *SNMP) firstString(root string) string {
	var out string
	_ = s.client.BulkWalk(root, func(pdu gosnmp.SnmpPDU) error {
		if v := pduString(pdu); v != "" {
			out = v
			return errStopWalk
		}
		return nil
	})
	return out
}

func (s *SNMP) walkStrings(root string) []string {
	var out []string
	_ = s.client.BulkWalk(root, func(pdu gosnmp.SnmpPDU) error {
		if v := pduString(pdu); v != "" {
			out = append(out, v)
		}
		return nil
	})
	return out
}

func packetError(pkt *gosnmp.SnmpPacket) error {
	if pkt == nil {
		return errors.New("empty response")
	}
	if pkt.Error != gosnmp.NoError {
		return fmt.Errorf("agent error %v", pkt.Error)
	}
	return nil
}

func normalizeOID(oid string) string {
	return "." + strings.TrimPrefix(oid, ".")
}

// splitColumn splits a table OID into its column number and row index
func splitColumn(root, oid string) (int, string, bool) {
	rest, ok := strings.CutPrefix(normalizeOID(oid), root+".")
	if !ok {
		return 0, "", false
	}
	colStr, index, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, "", false
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return 0, "", false
	}
	return col, index, true
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return strings.TrimSpace(string(v))
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

func pduInt(pdu gosnmp.SnmpPDU) int {
	//nolint:exhaustive // everything else is numeric or ignored
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null, gosnmp.OctetString:
		return 0
	}
	return int(gosnmp.ToBigInt(pdu.Value).Int64())
}

func pduMAC(pdu gosnmp.SnmpPDU) string {
	b, ok := pdu.Value.([]byte)
	if !ok || len(b) != 6 {
		return ""
	}
	return net.HardwareAddr(b).String()
}

func withPrefix(ip, mask string) string {
	m := net.ParseIP(mask).To4()
	if m == nil {
		return ip
	}
	ones, bits := net.IPMask(m).Size()
	if bits == 0 {
		return ip
	}
	return fmt.Sprintf("%s/%d", ip, ones)
}

// kindFromIfType classifies IANAifType values
func kindFromIfType(t int) InterfaceKind {
	switch t {
	case 6, 62, 69, 117:
		return KindEthernet
	case 24:
		return KindLoopback
	case 161:
		return KindLAG
	case 131:
		return KindTunnel
	case 53, 135, 136:
		return KindVirtual
	default:
		return KindOther
	}
}
