/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import "github.com/Seednode/geoduel/internal/geo"

// defaultLocations seeds the Location Provider when no --locations-file is
// given. Ported from original_source/api/seed_locations.py; the source
// schema has no image URL column, so URL is left empty here (street-view
// image delivery is outside this backend's scope, same as avatar upload).
var defaultLocations = []geo.Location{
	{Latitude: 48.8566, Longitude: 2.3522, Region: "Europe", Country: "France"},
	{Latitude: 51.5074, Longitude: -0.1278, Region: "Europe", Country: "United Kingdom"},
	{Latitude: 52.5200, Longitude: 13.4050, Region: "Europe", Country: "Germany"},
	{Latitude: 41.9028, Longitude: 12.4964, Region: "Europe", Country: "Italy"},
	{Latitude: 40.4168, Longitude: -3.7038, Region: "Europe", Country: "Spain"},
	{Latitude: 59.9139, Longitude: 10.7522, Region: "Europe", Country: "Norway"},
	{Latitude: 55.6761, Longitude: 12.5683, Region: "Europe", Country: "Denmark"},
	{Latitude: 60.1699, Longitude: 24.9384, Region: "Europe", Country: "Finland"},
	{Latitude: 59.4370, Longitude: 24.7536, Region: "Europe", Country: "Estonia"},
	{Latitude: 47.3769, Longitude: 8.5417, Region: "Europe", Country: "Switzerland"},
	{Latitude: 48.2082, Longitude: 16.3738, Region: "Europe", Country: "Austria"},
	{Latitude: 50.0755, Longitude: 14.4378, Region: "Europe", Country: "Czech Republic"},
	{Latitude: 52.2297, Longitude: 21.0122, Region: "Europe", Country: "Poland"},
	{Latitude: 47.4979, Longitude: 19.0402, Region: "Europe", Country: "Hungary"},
	{Latitude: 44.8176, Longitude: 20.4633, Region: "Europe", Country: "Serbia"},
	{Latitude: 37.9838, Longitude: 23.7275, Region: "Europe", Country: "Greece"},
	{Latitude: 38.7223, Longitude: -9.1393, Region: "Europe", Country: "Portugal"},
	{Latitude: 59.3293, Longitude: 18.0686, Region: "Europe", Country: "Sweden"},
	{Latitude: 53.3498, Longitude: -6.2603, Region: "Europe", Country: "Ireland"},
	{Latitude: 50.8503, Longitude: 4.3517, Region: "Europe", Country: "Belgium"},
	{Latitude: 35.6762, Longitude: 139.6503, Region: "Asia", Country: "Japan"},
	{Latitude: 37.5665, Longitude: 126.9780, Region: "Asia", Country: "South Korea"},
	{Latitude: 39.9042, Longitude: 116.4074, Region: "Asia", Country: "China"},
	{Latitude: 1.3521, Longitude: 103.8198, Region: "Asia", Country: "Singapore"},
	{Latitude: 13.7563, Longitude: 100.5018, Region: "Asia", Country: "Thailand"},
	{Latitude: 21.0285, Longitude: 105.8542, Region: "Asia", Country: "Vietnam"},
	{Latitude: 28.6139, Longitude: 77.2090, Region: "Asia", Country: "India"},
	{Latitude: 31.5497, Longitude: 74.3436, Region: "Asia", Country: "Pakistan"},
	{Latitude: 3.1390, Longitude: 101.6869, Region: "Asia", Country: "Malaysia"},
	{Latitude: -6.2088, Longitude: 106.8456, Region: "Asia", Country: "Indonesia"},
	{Latitude: 14.5995, Longitude: 120.9842, Region: "Asia", Country: "Philippines"},
	{Latitude: 27.4716, Longitude: 89.6386, Region: "Asia", Country: "Bhutan"},
	{Latitude: 33.8869, Longitude: 9.5375, Region: "Asia", Country: "Tunisia"},
	{Latitude: 25.2048, Longitude: 55.2708, Region: "Asia", Country: "UAE"},
	{Latitude: 41.2995, Longitude: 69.2401, Region: "Asia", Country: "Uzbekistan"},
	{Latitude: 40.7128, Longitude: -74.0060, Region: "Americas", Country: "USA"},
	{Latitude: 34.0522, Longitude: -118.2437, Region: "Americas", Country: "USA"},
	{Latitude: 41.8781, Longitude: -87.6298, Region: "Americas", Country: "USA"},
	{Latitude: 29.7604, Longitude: -95.3698, Region: "Americas", Country: "USA"},
	{Latitude: 47.6062, Longitude: -122.3321, Region: "Americas", Country: "USA"},
	{Latitude: 45.5017, Longitude: -73.5673, Region: "Americas", Country: "Canada"},
	{Latitude: 43.6532, Longitude: -79.3832, Region: "Americas", Country: "Canada"},
	{Latitude: 49.2827, Longitude: -123.1207, Region: "Americas", Country: "Canada"},
	{Latitude: -23.5505, Longitude: -46.6333, Region: "Americas", Country: "Brazil"},
	{Latitude: -22.9068, Longitude: -43.1729, Region: "Americas", Country: "Brazil"},
	{Latitude: -34.6037, Longitude: -58.3816, Region: "Americas", Country: "Argentina"},
	{Latitude: -33.4489, Longitude: -70.6693, Region: "Americas", Country: "Chile"},
	{Latitude: -12.0464, Longitude: -77.0428, Region: "Americas", Country: "Peru"},
	{Latitude: 4.7110, Longitude: -74.0721, Region: "Americas", Country: "Colombia"},
	{Latitude: 19.4326, Longitude: -99.1332, Region: "Americas", Country: "Mexico"},
	{Latitude: -33.9249, Longitude: 18.4241, Region: "Africa", Country: "South Africa"},
	{Latitude: -26.3054, Longitude: 31.1367, Region: "Africa", Country: "Eswatini"},
	{Latitude: 30.0444, Longitude: 31.2357, Region: "Africa", Country: "Egypt"},
	{Latitude: 6.3703, Longitude: 2.3912, Region: "Africa", Country: "Benin"},
	{Latitude: -1.2921, Longitude: 36.8219, Region: "Africa", Country: "Kenya"},
	{Latitude: -25.9692, Longitude: 32.5732, Region: "Africa", Country: "Mozambique"},
	{Latitude: 14.6928, Longitude: -17.4467, Region: "Africa", Country: "Senegal"},
	{Latitude: 5.3600, Longitude: -4.0083, Region: "Africa", Country: "Ivory Coast"},
	{Latitude: -18.9249, Longitude: 47.5185, Region: "Africa", Country: "Madagascar"},
	{Latitude: -1.9441, Longitude: 30.0619, Region: "Africa", Country: "Rwanda"},
	{Latitude: -33.8688, Longitude: 151.2093, Region: "Oceania", Country: "Australia"},
	{Latitude: -37.8136, Longitude: 144.9631, Region: "Oceania", Country: "Australia"},
	{Latitude: -27.4698, Longitude: 153.0251, Region: "Oceania", Country: "Australia"},
	{Latitude: -36.8485, Longitude: 174.7633, Region: "Oceania", Country: "New Zealand"},
	{Latitude: -41.2866, Longitude: 174.7756, Region: "Oceania", Country: "New Zealand"},
	{Latitude: -17.7333, Longitude: 168.3273, Region: "Oceania", Country: "Vanuatu"},
	{Latitude: 55.7558, Longitude: 37.6173, Region: "Russia", Country: "Russia"},
	{Latitude: 59.9311, Longitude: 30.3609, Region: "Russia", Country: "Russia"},
	{Latitude: 56.8389, Longitude: 60.6057, Region: "Russia", Country: "Russia"},
	{Latitude: 53.9045, Longitude: 27.5615, Region: "Russia", Country: "Belarus"},
	{Latitude: 50.4501, Longitude: 30.5234, Region: "Russia", Country: "Ukraine"},
	{Latitude: 51.1801, Longitude: 71.4460, Region: "Asia", Country: "Kazakhstan"},
}
