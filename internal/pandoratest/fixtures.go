package pandoratest

// REST paths served by default.
const (
	PathSortedPlaylists   = "/api/v6/collections/getSortedPlaylists"
	PathItems             = "/api/v6/collections/getItems"
	PathStations          = "/api/v1/station/getStations"
	PathBillingInfo       = "/api/v1/billing/infoV2"
	PathAvailableProducts = "/api/v2/charon/getAvailableProducts"
	PathCreditCard        = "/api/v1/billing/getCreditCardV2"
	PathGraphQL           = "/api/v1/graphql/graphql"
)

// SortedPlaylistsJSON holds two playlists and their curator.
const SortedPlaylistsJSON = `{
  "view": "PL",
  "listenerId": 1000001,
  "listenerPandoraId": "LI:1000001",
  "totalCount": 2,
  "offset": 0,
  "limit": 1000,
  "sortOrder": "MOST_RECENT_MODIFIED",
  "version": 7,
  "items": [
    {"pandoraId": "PL:1000001:1", "pandoraType": "PL", "linkedType": "TR", "addedTime": 1700000000000, "updatedTime": 1700000500000},
    {"pandoraId": "PL:1000001:2", "pandoraType": "PL", "linkedType": "TR", "addedTime": 1690000000000, "updatedTime": 1690000500000}
  ],
  "annotations": {
    "PL:1000001:1": {
      "pandoraId": "PL:1000001:1", "type": "PL", "name": "Morning", "description": "coffee",
      "timeCreated": 1700000000000, "timeLastUpdated": 1700000500000, "totalTracks": 12,
      "duration": 2700, "isPrivate": false, "listenerId": 1000001, "listenerPandoraId": "LI:1000001"
    },
    "PL:1000001:2": {
      "pandoraId": "PL:1000001:2", "type": "PL", "name": "Thumbs Up",
      "timeCreated": 1690000000000, "timeLastUpdated": 1690000500000, "totalTracks": 40,
      "duration": 9600, "isPrivate": true, "listenerId": 1000001, "listenerPandoraId": "LI:1000001"
    },
    "LI:1000001": {
      "pandoraId": "LI:1000001", "type": "LI", "listenerId": 1000001,
      "webname": "listener1", "fullname": "Test Listener", "displayname": "Test"
    }
  }
}`

// ItemsJSON holds one track and one station.
const ItemsJSON = `{
  "listenerId": 1000001,
  "limit": 1000,
  "version": 7,
  "items": [
    {"pandoraId": "TR:1", "pandoraType": "TR", "albumPandoraId": "AL:1", "addedTime": 1700000000000, "updatedTime": 1700000000000},
    {"pandoraId": "ST:2", "pandoraType": "ST", "addedTime": 1690000000000, "updatedTime": 1690000000000}
  ]
}`

// StationsJSON holds two stations.
const StationsJSON = `{
  "totalStations": 2,
  "sortedBy": "lastPlayedTime",
  "index": 0,
  "stations": [
    {
      "stationId": "4001", "pandoraId": "ST:0:4001", "name": "Jazz Radio",
      "art": [{"url": "https://example.com/a.jpg", "size": 500}],
      "dateCreated": "2023-11-14T22:13:20.000Z", "lastPlayed": "2024-01-02T03:04:05.000Z",
      "timeAdded": "2023-11-14T22:13:20.000Z", "lastUpdated": "2024-01-02T03:04:05.000Z",
      "totalPlayTime": 3600, "isShared": false, "isThumbprint": false, "isShuffle": false
    },
    {
      "stationId": "4002", "pandoraId": "SF:0:4002", "name": "Thumbprint Radio",
      "dateCreated": "2023-01-01T00:00:00.000Z", "lastPlayed": "",
      "timeAdded": "2023-01-01T00:00:00.000Z", "lastUpdated": "2023-01-01T00:00:00.000Z",
      "totalPlayTime": 0, "isThumbprint": true
    }
  ]
}`

// BillingInfoJSON is a free tier account.
const BillingInfoJSON = `{
  "subscriber": false,
  "autoRenew": false,
  "paymentProviderType": "NONE",
  "activeProduct": {
    "billingTerritory": "US",
    "productTier": "FREE",
    "productType": "FREE",
    "durationType": "NONE",
    "price": 0,
    "acceptedCurrency": "USD"
  }
}`

// ProductsJSON offers one product group.
const ProductsJSON = `{
  "listenerId": 1000001,
  "billingTerritory": "US",
  "productGroups": [{"groupName": "premium"}]
}`

// CreditCardJSON is an account with no stored card.
const CreditCardJSON = `{"hasCreditCard": false}`

// GraphQLJSON answers any query with a profile.
const GraphQLJSON = `{"data": {"profile": {"listenerId": "1000001", "webname": "listener1"}}}`

func defaultResponses() map[string]string {
	return map[string]string{
		PathSortedPlaylists:   SortedPlaylistsJSON,
		PathItems:             ItemsJSON,
		PathStations:          StationsJSON,
		PathBillingInfo:       BillingInfoJSON,
		PathAvailableProducts: ProductsJSON,
		PathCreditCard:        CreditCardJSON,
		PathGraphQL:           GraphQLJSON,
	}
}
