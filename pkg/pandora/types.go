package pandora

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item type codes used in ids and annotations.
const (
	TypePlaylist        = "PL"
	TypePlaylistCurator = "LI"
	TypeTrack           = "TR"
	TypeAlbum           = "AL"
	TypeArtist          = "AR"
	TypeArtistPlay      = "AP"
	TypeStation         = "ST"
	TypeStationCurator  = "SF"
	TypeCurator         = "CU"
	TypeArtistTracks    = "AT"
	TypeAmbient         = "AM"
)

// Licensing is the result of test.checkLicensing.
type Licensing struct {
	IsAllowed bool `json:"isAllowed"`
}

// PartnerAuth is the result of auth.partnerLogin.
type PartnerAuth struct {
	PartnerID        string `json:"partnerId"`
	PartnerAuthToken string `json:"partnerAuthToken"`
	SyncTime         string `json:"syncTime"`
	StationSkipLimit int    `json:"stationSkipLimit"`
	StationSkipUnit  string `json:"stationSkipUnit"`
}

// UserAuth is the result of auth.userLogin.
type UserAuth struct {
	Username                       string `json:"username"`
	UserID                         string `json:"userId"`
	UserAuthToken                  string `json:"userAuthToken"`
	CanListen                      bool   `json:"canListen"`
	ListeningTimeoutMinutes        string `json:"listeningTimeoutMinutes"`
	ListeningTimeoutAlertMsgURI    string `json:"listeningTimeoutAlertsMsgUri"`
	MaxStationsAllowed             int    `json:"maxStationsAllowed"`
	ZeroVolumeNumMutedTracks       int    `json:"zeroVolumeNumMutedTracks"`
	ZeroVolumeAutoPauseEnabledFlag bool   `json:"zeroVolumeAutoPauseEnabledFlag"`
}

// Icon is artwork attached to an item.
type Icon struct {
	ArtID         string `json:"artId"`
	ArtURL        string `json:"artUrl"`
	DominantColor string `json:"dominantColor"`
}

// Art is a sized artwork url.
type Art struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// PlaylistsRequest is the body of getSortedPlaylists.
type PlaylistsRequest struct {
	AllowedTypes              []string              `json:"allowedTypes"`
	IsRecentModifiedPlaylists bool                  `json:"isRecentModifiedPlaylists"`
	Request                   PlaylistsRequestPager `json:"request"`
}

// PlaylistsRequestPager controls paging of getSortedPlaylists.
type PlaylistsRequestPager struct {
	AnnotationLimit int    `json:"annotationLimit"`
	Limit           int    `json:"limit"`
	SortOrder       string `json:"sortOrder"`
}

// DefaultPlaylistsRequest returns the request the web client sends.
func DefaultPlaylistsRequest() *PlaylistsRequest {
	return &PlaylistsRequest{
		AllowedTypes: []string{TypeTrack, TypeAmbient},
		Request: PlaylistsRequestPager{
			AnnotationLimit: 100,
			Limit:           1000,
			SortOrder:       "MOST_RECENT_MODIFIED",
		},
	}
}

// PlaylistRef is a playlist entry in a collection listing.
type PlaylistRef struct {
	PandoraID   string `json:"pandoraId"`
	PandoraType string `json:"pandoraType"`
	Name        string `json:"name"`
	LinkedType  string `json:"linkedType"`
	AddedTime   int64  `json:"addedTime"`   // Unix milliseconds
	UpdatedTime int64  `json:"updatedTime"` // Unix milliseconds
	OwnerID     int64  `json:"ownerId,omitempty"`
}

// Annotation is a metadata record keyed by item id. Which fields are set
// depends on Type.
type Annotation struct {
	PandoraID          string `json:"pandoraId"`
	Type               string `json:"type"`
	Scope              string `json:"scope"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Version            int    `json:"version"`
	TimeCreated        int64  `json:"timeCreated"`     // Unix milliseconds
	TimeLastUpdated    int64  `json:"timeLastUpdated"` // Unix milliseconds
	IsPrivate          bool   `json:"isPrivate"`
	Secret             bool   `json:"secret"`
	LinkedType         string `json:"linkedType"`
	TotalTracks        int    `json:"totalTracks"`
	ShareableURLPath   string `json:"shareableUrlPath"`
	ThorLayers         string `json:"thorLayers"`
	Duration           int    `json:"duration"` // Seconds
	Unlocked           bool   `json:"unlocked"`
	Collectible        bool   `json:"collectible"`
	AutogenForListener bool   `json:"autogenForListener"`
	ListenerID         int64  `json:"listenerId"`
	ListenerPandoraID  string `json:"listenerPandoraId"`

	// Curator (LI) fields
	Webname     string `json:"webname,omitempty"`
	Fullname    string `json:"fullname,omitempty"`
	Displayname string `json:"displayname,omitempty"`

	// Track, album and artist fields
	SortableName string `json:"sortableName,omitempty"`
	ArtistID     string `json:"artistId,omitempty"`
	ArtistName   string `json:"artistName,omitempty"`
	AlbumID      string `json:"albumId,omitempty"`
	AlbumName    string `json:"albumName,omitempty"`
	TrackNumber  int    `json:"trackNumber,omitempty"`
	Explicitness string `json:"explicitness,omitempty"`
	Icon         *Icon  `json:"icon,omitempty"`
}

// RawPlaylists is the unprocessed getSortedPlaylists response.
type RawPlaylists struct {
	View              string                `json:"view"`
	ListenerID        int64                 `json:"listenerId"`
	ListenerPandoraID string                `json:"listenerPandoraId"`
	TotalCount        int                   `json:"totalCount"`
	Offset            int                   `json:"offset"`
	Limit             int                   `json:"limit"`
	SortOrder         string                `json:"sortOrder"`
	Version           int                   `json:"version"`
	Annotations       map[string]Annotation `json:"annotations"`
	Items             []PlaylistRef         `json:"items"`
}

func (r *RawPlaylists) validate() error {
	if r.Items == nil {
		return fmt.Errorf("missing items")
	}
	if r.Annotations == nil {
		return fmt.Errorf("missing annotations")
	}
	return nil
}

// Playlist is a playlist entry merged with its annotation.
type Playlist struct {
	PandoraID        string
	Name             string
	Description      string
	LinkedType       string
	TotalTracks      int
	Duration         time.Duration
	IsPrivate        bool
	ShareableURLPath string
	ThorLayers       string
	ListenerID       int64
	AddedTime        time.Time
	UpdatedTime      time.Time
	TimeCreated      time.Time
	TimeLastUpdated  time.Time
}

// Listener is a playlist curator annotation.
type Listener struct {
	PandoraID   string
	ListenerID  int64
	Webname     string
	Fullname    string
	Displayname string
}

// Playlists is the processed getSortedPlaylists response.
type Playlists struct {
	ListenerID        int64
	ListenerPandoraID string
	TotalCount        int
	Offset            int
	Limit             int
	SortOrder         string
	Items             []Playlist
	Listeners         []Listener
}

// CollectionItem is an entry returned by getItems.
type CollectionItem struct {
	PandoraID      string `json:"pandoraId"`
	PandoraType    string `json:"pandoraType"`
	AlbumPandoraID string `json:"albumPandoraId,omitempty"`
	LinkedType     string `json:"linkedType,omitempty"`
	AddedTime      int64  `json:"addedTime"`
	UpdatedTime    int64  `json:"updatedTime"`
}

// Items is the getItems response.
type Items struct {
	ListenerID int64            `json:"listenerId"`
	Limit      int              `json:"limit"`
	Version    int64            `json:"version"`
	Items      []CollectionItem `json:"items"`
}

func (r *Items) validate() error {
	if r.Items == nil {
		return fmt.Errorf("missing items")
	}
	return nil
}

// RawStation is a station as returned by getStations.
type RawStation struct {
	StationID               string `json:"stationId"`
	StationFactoryPandoraID string `json:"stationFactoryPandoraId"`
	PandoraID               string `json:"pandoraId"`
	Name                    string `json:"name"`
	Art                     []Art  `json:"art"`
	DateCreated             string `json:"dateCreated"`
	LastPlayed              string `json:"lastPlayed"`
	TimeAdded               string `json:"timeAdded"`
	LastUpdated             string `json:"lastUpdated"`
	TotalPlayTime           int64  `json:"totalPlayTime"` // Seconds
	IsNew                   bool   `json:"isNew"`
	AllowDelete             bool   `json:"allowDelete"`
	AllowRename             bool   `json:"allowRename"`
	IsShared                bool   `json:"isShared"`
	IsThumbprint            bool   `json:"isThumbprint"`
	IsShuffle               bool   `json:"isShuffle"`
	CreatorWebname          string `json:"creatorWebname"`
	ArtID                   string `json:"artId"`
	DominantColor           string `json:"dominantColor"`
	ListenerID              string `json:"listenerId"`
	Deleted                 bool   `json:"deleted"`
	StationType             string `json:"stationType"`
	InitialSeed             struct {
		MusicID   string `json:"musicId"`
		PandoraID string `json:"pandoraId"`
	} `json:"initialSeed"`
}

// RawStations is the unprocessed getStations response.
type RawStations struct {
	TotalStations int          `json:"totalStations"`
	SortedBy      string       `json:"sortedBy"`
	Index         int          `json:"index"`
	Stations      []RawStation `json:"stations"`
}

func (r *RawStations) validate() error {
	if r.Stations == nil {
		return fmt.Errorf("missing stations")
	}
	return nil
}

// Station is a station with its dates parsed.
type Station struct {
	StationID     string
	PandoraID     string
	Name          string
	Art           []Art
	TotalPlayTime time.Duration
	IsShared      bool
	IsThumbprint  bool
	IsShuffle     bool
	Deleted       bool
	DateCreated   time.Time
	LastPlayed    time.Time
	TimeAdded     time.Time
	LastUpdated   time.Time
}

// Stations is the processed getStations response.
type Stations struct {
	TotalStations int
	SortedBy      string
	Index         int
	Stations      []Station
}

// BillingInfo is the infoV2 response.
type BillingInfo struct {
	Subscriber           bool   `json:"subscriber"`
	Giftee               bool   `json:"giftee"`
	InPaymentBackedTrial bool   `json:"inPaymentBackedTrial"`
	AutoRenew            bool   `json:"autoRenew"`
	PaymentProviderType  string `json:"paymentProviderType"`
	PaymentProvider      string `json:"paymentProvider"`
	BillingAccountName   string `json:"billingAccountName"`
	IPGEligible          bool   `json:"ipgEligible"`
	ActiveProduct        *struct {
		BillingTerritory string  `json:"billingTerritory"`
		ProductTier      string  `json:"productTier"`
		ProductType      string  `json:"productType"`
		DurationType     string  `json:"durationType"`
		Price            float64 `json:"price"`
		AcceptedCurrency string  `json:"acceptedCurrency"`
		ProductDetails   struct {
			FamilyPlanType     string `json:"familyPlanType"`
			ProductDescription string `json:"productDescription"`
		} `json:"productDetails"`
	} `json:"activeProduct"`
}

// validate requires activeProduct, which every account has (free tier
// included).
func (r *BillingInfo) validate() error {
	if r.ActiveProduct == nil {
		return fmt.Errorf("missing activeProduct")
	}
	return nil
}

// Products is the getAvailableProducts response.
type Products struct {
	ListenerID       int64             `json:"listenerId"`
	BillingTerritory string            `json:"billingTerritory"`
	ProductGroups    []json.RawMessage `json:"productGroups"`
}

func (r *Products) validate() error {
	if r.BillingTerritory == "" {
		return fmt.Errorf("missing billingTerritory")
	}
	return nil
}

// GraphQLRequest is the body of a graphql call.
type GraphQLRequest struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     string `json:"variables"`
}

// GraphQLError is an entry of a graphql "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse is a graphql result. Data is left raw for the caller to
// decode into the shape its query selects.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

func (r *GraphQLResponse) validate() error {
	if len(r.Errors) > 0 {
		return fmt.Errorf("graphql: %s", r.Errors[0].Message)
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("missing data")
	}
	return nil
}

// Sailthru is the web version probe response.
type Sailthru struct {
	Version string `json:"version"`
}

func (r *Sailthru) validate() error {
	if r.Version == "" {
		return fmt.Errorf("missing version")
	}
	return nil
}

// validator is implemented by response types checked at the boundary.
type validator interface {
	validate() error
}
