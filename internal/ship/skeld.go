package ship

// SkeldLayout is the name of the default ship
const SkeldLayout = "skeld"

// Room names of the Skeld
const (
	Cafeteria      = "Cafeteria"
	MedBay         = "MedBay"
	Weapons        = "Weapons"
	UpperEngine    = "Upper Engine"
	Reactor        = "Reactor"
	Security       = "Security"
	Admin          = "Admin"
	Hallway        = "Hallway"
	O2             = "O2"
	Nav            = "Nav"
	Electrical     = "Electrical"
	Storage        = "Storage"
	Shields        = "Shields"
	LowerEngine    = "Lower Engine"
	Communications = "Communications"
)

// SpawnRoom is where every player starts and returns to after a meeting
const SpawnRoom = Cafeteria

var skeldRooms = []RoomSpec{
	{Name: Cafeteria, Neighbors: []string{Weapons, UpperEngine, Admin, MedBay}, HasTasks: true, CanVent: true},
	{Name: MedBay, Neighbors: []string{UpperEngine, Cafeteria}, HasTasks: true, CanVent: true},
	{Name: Weapons, Neighbors: []string{Cafeteria, O2, Nav}, HasTasks: true},
	{Name: UpperEngine, Neighbors: []string{Reactor, Security, Cafeteria, MedBay}, HasTasks: true, CanVent: true},
	{Name: Reactor, Neighbors: []string{Security, UpperEngine, Electrical}, HasTasks: true, CanVent: true},
	{Name: Security, Neighbors: []string{Electrical, Reactor, UpperEngine, LowerEngine}, HasTasks: true, CanVent: true},
	{Name: Admin, Neighbors: []string{Cafeteria, Storage, Hallway}, HasTasks: true, CanVent: true},
	{Name: Hallway, Neighbors: []string{Admin}},
	{Name: O2, Neighbors: []string{Weapons, Nav, Shields}, HasTasks: true, CanVent: true},
	{Name: Nav, Neighbors: []string{Weapons, O2, Shields}, HasTasks: true, CanVent: true},
	{Name: Electrical, Neighbors: []string{Storage, LowerEngine, Security, Reactor}, HasTasks: true, CanVent: true},
	{Name: Storage, Neighbors: []string{Cafeteria, Shields, Communications, Admin, Electrical}, HasTasks: true, CanVent: true},
	{Name: Shields, Neighbors: []string{Nav, O2, Storage, Communications}, HasTasks: true, CanVent: true},
	{Name: LowerEngine, Neighbors: []string{Security, Electrical}, HasTasks: true, CanVent: true},
	{Name: Communications, Neighbors: []string{Shields, Storage}, HasTasks: true, CanVent: true},
}

var skeldVents = map[string][]string{
	Cafeteria:      {Admin, MedBay},
	UpperEngine:    {Reactor, Security},
	Reactor:        {UpperEngine, Security, Electrical},
	Security:       {UpperEngine, Reactor, Electrical, LowerEngine, Storage},
	LowerEngine:    {Security, Electrical},
	Electrical:     {Security, MedBay, Reactor, LowerEngine},
	MedBay:         {Electrical, Cafeteria},
	Admin:          {Cafeteria, O2},
	O2:             {Admin, Nav, Shields},
	Nav:            {O2, Shields},
	Shields:        {O2, Nav, Communications},
	Storage:        {Admin, Communications, Security},
	Communications: {Shields, Storage},
}

// NewSkeld builds the Skeld ship
func NewSkeld() *Map {
	return New(SkeldLayout, skeldRooms, skeldVents)
}
