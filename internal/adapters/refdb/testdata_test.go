package refdb_test

const sampleTable = `
- mgrs_set_id: MS_1_1
  bursts: "['t001_000001_iw1', 't001_000001_iw2', 't002_000001_iw1']"
  land_ocean_flag: water/land
- mgrs_set_id: MS_1_0
  bursts: "{'t001_000002_iw1', 't001_000002_iw2'}"
  land_ocean_flag: water
- mgrs_set_id: MS_3_9
  bursts:
    - t003_000009_iw1
    - t003_000009_iw3
  land_ocean_flag: land
  number_of_bursts: 3
`
