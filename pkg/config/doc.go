/*
Package config manages the plugin settings for quickxfer.

	                +-------------+
	                |   Config    |
	                | (Settings)  |
	                +------+------+
	                       |
	      +----------------+----------------+
	      |                |                |
	+-----+-----+    +-----+-----+    +-----+-----+
	|   YAML    |    |    HCL    |    |   JSON    |
	|  Parser   |    |  Parser   |    |  Parser   |
	+-----------+    +-----------+    +-----------+

🎯 Purpose:
- Picks a parser by file extension
- Fills defaults for everything left out
- Resolves the data directory, honoring QUICKXFER_DATA_DIR

📂 Data directory layout:

	Data/SKSE/Plugins/QuickItemTransfer/
	    raw_food.txt           one form reference per line
	    Ores/                  a folder wins over the single file
	        vanilla.txt
	        dawnguard.txt

🔍 Example:

	data_dir    = "Data/SKSE/Plugins/QuickItemTransfer"
	min_weight  = 0.1
	exclude     = ["0x00000F~Skyrim.esm"]
	keywords    = { Jewelry = "0x08F95A~Skyrim.esm" }
*/
package config
