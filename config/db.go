package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go driver registered as "sqlite"

	"villas-backend/models"
	"villas-backend/pricing"
)

const sqlitePrefix = "sqlite://"

// ConnectDatabase opens the catalog database, migrates it and seeds the
// reference rows when the tables are empty.
func ConnectDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dialector, err := resolveDialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(cfg.URL, sqlitePrefix) {
		// an in-memory database only lives as long as its single connection
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(
		&models.RoomType{},
		&models.Experience{},
		&models.VirtualTour{},
	); err != nil {
		return nil, err
	}

	if err := SeedDatabase(db); err != nil {
		return nil, err
	}
	return db, nil
}

func resolveDialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	if strings.HasPrefix(cfg.URL, sqlitePrefix) {
		// sqlite:///var/data/villas.db keeps the leading slash of an absolute path
		path := strings.TrimPrefix(cfg.URL, sqlitePrefix)
		if path == "" {
			path = ":memory:"
		}
		conn, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		return sqlite.Dialector{DriverName: "sqlite", DSN: path, Conn: conn}, nil
	}

	dsn, err := resolveMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return mysql.Open(dsn), nil
}

func resolveMySQLDSN(cfg DatabaseConfig) (string, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	mcfg := newMySQLConfig()
	mcfg.User = cfg.User
	mcfg.Passwd = cfg.Password
	mcfg.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mcfg.DBName = cfg.Name
	return mcfg.FormatDSN(), nil
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	mcfg := newMySQLConfig()
	mcfg.User = u.User.Username()
	mcfg.Passwd, _ = u.User.Password()
	mcfg.Addr = net.JoinHostPort(u.Hostname(), port)
	mcfg.DBName = dbName
	for key, values := range u.Query() {
		switch key {
		case "parseTime", "loc":
			// fixed below
		default:
			if len(values) > 0 {
				mcfg.Params[key] = values[0]
			}
		}
	}
	return mcfg.FormatDSN(), nil
}

func newMySQLConfig() *mysqldriver.Config {
	mcfg := mysqldriver.NewConfig()
	mcfg.Net = "tcp"
	mcfg.ParseTime = true
	mcfg.Loc = time.Local
	mcfg.Params = map[string]string{"charset": "utf8mb4"}
	return mcfg
}

// SeedDatabase inserts the published catalog when a table is empty.
func SeedDatabase(db *gorm.DB) error {
	// ---------------- RoomTypes ----------------
	var rtCount int64
	if err := db.Model(&models.RoomType{}).Count(&rtCount).Error; err != nil {
		return err
	}
	if rtCount == 0 {
		catalog := pricing.DefaultCatalog()
		roomTypes := []models.RoomType{
			{
				Key:         string(pricing.DoubleRoom),
				TypeName:    pricing.DoubleRoom.DisplayName(),
				Description: "Luxurious comfort in the heart of the desert, with a double bed, private bathroom and mountain views.",
				NightlyRate: catalog.Rate(pricing.DoubleRoom),
				MaxGuests:   2,
				ImageURL:    "/images/double-room.jpeg",
				Bookable:    true,
				SortOrder:   1,
			},
			{
				Key:         string(pricing.TwinRoom),
				TypeName:    pricing.TwinRoom.DisplayName(),
				Description: "Two single beds and all modern amenities, ideal for friends travelling together.",
				NightlyRate: catalog.Rate(pricing.TwinRoom),
				MaxGuests:   2,
				ImageURL:    "/images/twin-room.jpeg",
				Bookable:    true,
				SortOrder:   2,
			},
			{
				Key:         string(pricing.TripleRoom),
				TypeName:    pricing.TripleRoom.DisplayName(),
				Description: "Spacious villa for three guests with stunning views of the Wadi Rum mountains.",
				NightlyRate: catalog.Rate(pricing.TripleRoom),
				MaxGuests:   3,
				ImageURL:    "/images/triple-room.jpeg",
				Bookable:    true,
				SortOrder:   3,
			},
		}
		if err := db.Create(&roomTypes).Error; err != nil {
			return fmt.Errorf("seed room types: %w", err)
		}
		log.Println("RoomTypes seeded")
	}

	// ---------------- Experiences ----------------
	var expCount int64
	if err := db.Model(&models.Experience{}).Count(&expCount).Error; err != nil {
		return err
	}
	if expCount == 0 {
		experiences := []models.Experience{
			{Name: "Camel Riding", PricePerPerson: 45, Duration: "1 hour", SortOrder: 1,
				Description: "Ride back in time and experience the desert like the Bedouins did for centuries. This sunset camel ride takes you through the beautiful dunes of Wadi Rum."},
			{Name: "Full Day Jeep Tour", PricePerPerson: 150, Duration: "7 hours", SortOrder: 2,
				Description: "A full-day tour that covers all major sites in Wadi Rum: hidden canyons, ancient rock drawings and lunch cooked the traditional Bedouin way."},
			{Name: "Horse Riding", PricePerPerson: 100, Duration: "1 hour", SortOrder: 3,
				Description: "Gallop through the pristine landscapes of Wadi Rum on well-trained Arabian horses, for beginners and experienced riders alike."},
			{Name: "Hot Air Balloon", PricePerPerson: 200, Duration: "1 hour", SortOrder: 4,
				Description: "Soar over Wadi Rum at sunrise for a panoramic view of the wilderness and its sandstone mountains."},
			{Name: "Sandboarding", PricePerPerson: 50, Duration: "1 hour", SortOrder: 5,
				Description: "Slide down the golden dunes of Wadi Rum on a sandboard. No experience needed."},
			{Name: "Half Day Jeep Tour", PricePerPerson: 80, Duration: "4 hours", SortOrder: 6,
				Description: "A 4-hour jeep tour visiting sand dunes, natural arches and historical sites."},
		}
		if err := db.Create(&experiences).Error; err != nil {
			return fmt.Errorf("seed experiences: %w", err)
		}
		log.Println("Experiences seeded")
	}

	// ---------------- Virtual tours ----------------
	var tourCount int64
	if err := db.Model(&models.VirtualTour{}).Count(&tourCount).Error; err != nil {
		return err
	}
	if tourCount == 0 {
		tours, err := seedTours()
		if err != nil {
			return err
		}
		if err := db.Create(&tours).Error; err != nil {
			return fmt.Errorf("seed virtual tours: %w", err)
		}
		log.Println("Virtual tours seeded")
	}
	return nil
}

func seedTours() ([]models.VirtualTour, error) {
	room := []models.TourScene{
		{
			ID:       "1743796464264",
			Title:    "Outside the villa",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743796462/virtual-tours/fza2kfhavtjq7t5hg48j.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743796521428", Pitch: -3.811414574532468, Yaw: -156.64445052687134, Text: "Enter Villa", Type: "scene", SceneID: "1743796497133"},
			},
			InitialView: &models.TourView{Pitch: -10.3130426591782, Yaw: -163.3594987578266},
		},
		{
			ID:       "1743796497133",
			Title:    "Inside the villa",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743796496/virtual-tours/wcjme3tkdwbqrgw7cdr6.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743796542115", Pitch: -8.942059078918808, Yaw: 95.16134972663167, Text: "Exit villa", Type: "scene", SceneID: "1743796464264"},
			},
			InitialView: &models.TourView{Pitch: -10.623088188493641, Yaw: -121.48357830403103},
		},
	}
	camp := []models.TourScene{
		{
			ID:       "1743799629572",
			Title:    "next to entrance",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799629/virtual-tours/guoizbfiljil2z1eoqge.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743799760058", Pitch: 2.8491399300892866, Yaw: 19.79507796854136, Text: "Main Area", Type: "scene", SceneID: "1743799642703"},
				{ID: "1743799787842", Pitch: -0.35194727975719436, Yaw: -55.60932092765553, Text: "New Hotspot", Type: "scene", SceneID: "1743799707838"},
				{ID: "1743799808450", Pitch: 0.7277063363890961, Yaw: 7.39275229684595, Text: "Sitting Area", Type: "scene", SceneID: "1743799737231"},
			},
			InitialView: &models.TourView{Pitch: 2.1406381409476647, Yaw: 14.11687735092778},
		},
		{
			ID:       "1743799642703",
			Title:    "main area",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799642/virtual-tours/n8wdmyhh3xwokpepbgex.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743799853634", Pitch: 1.2485513864964772, Yaw: -146.30127256165522, Text: "Sitting Area", Type: "scene", SceneID: "1743799737231"},
				{ID: "1743799869882", Pitch: -2.0611378406215497, Yaw: -89.60248134901946, Text: "Restaurant", Type: "scene", SceneID: "1743799724335"},
				{ID: "1743799887803", Pitch: -6.657994460725542, Yaw: 8.096892824551276, Text: "Beduin Tent", Type: "scene", SceneID: "1743799692393"},
			},
		},
		{
			ID:       "1743799666282",
			Title:    "sitting area",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799666/virtual-tours/vctsouhhpjwc6dmctw31.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743799920562", Pitch: 3.9058993350837152, Yaw: 60.48531040124899, Text: "New Hotspot", Type: "scene", SceneID: "1743799707838"},
				{ID: "1743799929219", Pitch: 5.132982623530734, Yaw: 25.1269133618536, Text: "Restaurant", Type: "scene", SceneID: "1743799724335"},
			},
		},
		{
			ID:       "1743799692393",
			Title:    "tent",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799692/virtual-tours/ilqvv44hpubjwqcuf8o3.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743799965626", Pitch: -1.9826682537309184, Yaw: -132.79707864330635, Text: "Main area", Type: "scene", SceneID: "1743799642703"},
				{ID: "1743800005434", Pitch: 0.520877720217946, Yaw: -115.27049076857135, Text: "Restaurant", Type: "scene", SceneID: "1743799724335"},
			},
			InitialView: &models.TourView{Pitch: -3.0697572166748346, Yaw: -136.13656843469556},
		},
		{
			ID:       "1743799707838",
			Title:    "palm",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799707/virtual-tours/d0rqljspcizcbvjc2tpx.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743800053505", Pitch: -3.05989554010507, Yaw: -174.21506544918896, Text: "Sitting Area", Type: "scene", SceneID: "1743799666282"},
				{ID: "1743800068425", Pitch: 1.8653508160581247, Yaw: -68.99020056808786, Text: "Sitting Area", Type: "scene", SceneID: "1743799737231"},
			},
			InitialView: &models.TourView{Pitch: 2.9073098940014397, Yaw: -159.52671792186118},
		},
		{
			ID:       "1743799724335",
			Title:    "restaurant",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799724/virtual-tours/n7iwzdymdykaxlfuc2qg.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743800103809", Pitch: 0.9457380711437782, Yaw: 101.57247555971708, Text: "Main Area", Type: "scene", SceneID: "1743799642703"},
				{ID: "1743800175137", Pitch: 16.089205607086775, Yaw: -78.95767206798416, Text: "Sitting Area", Type: "scene", SceneID: "1743799666282"},
				{ID: "1743800234305", Pitch: 1.5287675832927952, Yaw: -160.54284885717337, Text: "Sitting area", Type: "scene", SceneID: "1743799737231"},
			},
		},
		{
			ID:       "1743799737231",
			Title:    "second sitting",
			ImageURL: "https://res.cloudinary.com/dtcebnrl5/image/upload/v1743799737/virtual-tours/roxsuqudyxjkqicwavrh.jpg",
			Hotspots: []models.TourHotspot{
				{ID: "1743800265225", Pitch: -1.302239020868501, Yaw: 139.48505933440313, Text: "Main Area", Type: "scene", SceneID: "1743799642703"},
				{ID: "1743800284425", Pitch: -1.7787156506033874, Yaw: -20.2981018098991, Text: "Palm", Type: "scene", SceneID: "1743799707838"},
			},
		},
	}

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}
	campJSON, err := json.Marshal(camp)
	if err != nil {
		return nil, err
	}
	return []models.VirtualTour{
		{Slug: "double-room", Title: "Double Room", ViewerURL: "https://v0-360-virtual-tour-system-fjrdgu.vercel.app", Scenes: datatypes.JSON(roomJSON)},
		{Slug: "camp", Title: "The Camp", ViewerURL: "https://v0-360-virtual-tour-system.vercel.app", Scenes: datatypes.JSON(campJSON)},
	}, nil
}
